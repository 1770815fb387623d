package corochan

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTickTack(t *testing.T) {
	r := require.New(t)

	s := NewSchedule()
	tick := NewChannel[int](0)
	tack := NewChannel[int](0)

	var events []string
	s.Gogo(func(_ context.Context, task *Task) {
		for {
			a, ok := tick.Recv(task)
			if !ok {
				tack.Close()
				break
			}
			fmt.Printf("tick: %v\n", a)
			events = append(events, fmt.Sprintf("tick %v", a))
			tack.Send(task, a)
		}
	})
	s.Gogo(func(_ context.Context, task *Task) {
		tick.Send(task, 0)
		for {
			a, ok := tack.Recv(task)
			if !ok {
				break
			}
			fmt.Printf("tack: %v\n", a)
			events = append(events, fmt.Sprintf("tack %v", a))
			if a++; a < 10 {
				tick.Send(task, a)
			} else {
				tick.Close()
			}
		}
	})

	r.NoError(s.Resume(context.Background()))

	var expect []string
	for i := 0; i < 10; i++ {
		expect = append(expect, fmt.Sprintf("tick %v", i), fmt.Sprintf("tack %v", i))
	}
	r.Equal(expect, events)
	r.True(tick.Quiescent())
	r.True(tack.Quiescent())
}

func TestScheduleStalled(t *testing.T) {
	r := require.New(t)

	s := NewSchedule()
	ch := NewChannel[int](0)

	reached := false
	s.Gogo(func(_ context.Context, task *Task) {
		_, _ = ch.Recv(task)
		reached = true
	})

	err := s.Resume(context.Background())
	r.ErrorIs(err, ErrStalled)
	r.EqualError(err, "corochan: schedule stalled: 1 tasks parked on 1 channels")
	r.False(reached)
	r.Equal(0, s.Live())
}

func TestScheduleWatch(t *testing.T) {
	r := require.New(t)

	s := NewSchedule()
	ch := NewChannel[int](0)
	ch.Close()

	s.Watch(ch, ch)
	r.Len(s.chans, 1)

	r.NoError(s.Resume(context.Background()))
	r.Empty(s.chans)
	r.Empty(s.watched)
}

func TestYield(t *testing.T) {
	r := require.New(t)

	s := NewSchedule()

	var events []string
	for _, name := range []string{"a", "b"} {
		s.Gogo(func(_ context.Context, task *Task) {
			events = append(events, name+"1")
			task.Yield()
			events = append(events, name+"2")
		})
	}

	r.NoError(s.Resume(context.Background()))
	r.Equal([]string{"a1", "b1", "a2", "b2"}, events)
}

func TestTaskWait(t *testing.T) {
	r := require.New(t)

	s := NewSchedule()
	ch := NewChannel[int](0)

	sum, n, finished := 0, 0, 0
	joined := false
	s.Gogo(func(_ context.Context, task *Task) {
		for i := 0; i < 10; i++ {
			task.Gogo(func(_ context.Context, task *Task) {
				for v := range ch.All(task) {
					sum += v
					n++
				}
				finished++
			})
		}

		for i := 0; i < 10; i++ {
			ch.Send(task, i)
		}
		ch.Close()

		task.Wait()
		r.Equal(10, finished)
		joined = true
	})

	r.NoError(s.Resume(context.Background()))

	r.Equal(45, sum)
	r.Equal(10, n)
	r.True(joined)
}

func TestTaskFromContext(t *testing.T) {
	r := require.New(t)

	s := NewSchedule()
	ch := NewChannel[string](0)

	var got []string
	var outer *Task
	outer = s.Go(func(ctx context.Context) {
		task, ok := TaskFromContext(ctx)
		r.True(ok)
		r.Same(outer, task)

		task.Go(func(ctx context.Context) {
			task := MustTaskFromContext(ctx)
			r.Same(outer, task.parent)
			ch.Send(task, "hello")
			ch.Close()
		})

		for v := range ch.All(task) {
			got = append(got, v)
		}
	})

	r.NoError(s.Resume(context.Background()))
	r.Equal([]string{"hello"}, got)

	_, ok := TaskFromContext(context.Background())
	r.False(ok)
	r.Panics(func() { MustTaskFromContext(context.Background()) })
}

func TestGogoBeforeStart(t *testing.T) {
	r := require.New(t)

	s := NewSchedule()

	ran := false
	parent := s.Gogo(func(_ context.Context, _ *Task) {})
	child := parent.Gogo(func(ctx context.Context, task *Task) {
		got, ok := TaskFromContext(ctx)
		r.True(ok)
		r.Same(task, got)
		ran = true
	})
	r.Nil(child.Context())

	r.NoError(s.Resume(context.Background()))
	r.True(ran)
	r.Same(parent, child.parent)
	r.NotNil(child.Context())
}

func TestPanic(t *testing.T) {
	r := require.New(t)

	err := fmt.Errorf("UH OH")

	s := NewSchedule()
	s.Gogo(func(_ context.Context, task *Task) {
		task.Gogo(func(_ context.Context, task *Task) {
			panic(err)
		})
	})

	defer func() {
		p := recover()
		r.NotNil(p)
		ds, ok := p.(interface{ DebugString() string })
		r.True(ok, "panic err does not have DebugString()")
		r.Contains(ds.DebugString(), err.Error())
	}()

	_ = s.Resume(context.Background())
}
