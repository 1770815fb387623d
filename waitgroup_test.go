package corochan

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWaitGroup(t *testing.T) {
	r := require.New(t)

	s := NewSchedule()
	ch := NewChannel[string](0)

	expect, n := 100, 0
	s.Gogo(func(_ context.Context, task *Task) {
		var wg WaitGroup

		for i := 0; i < expect-1; i++ {
			wg.Add(1)
			task.Gogo(func(_ context.Context, task *Task) {
				defer wg.Done()
				ch.Send(task, strconv.Itoa(i))
				n++
			})
		}

		task.Gogo(func(_ context.Context, task *Task) {
			for range expect - 1 {
				_, ok := ch.Recv(task)
				r.True(ok)
			}
		})

		wg.Wait(task)
		n++
	})

	r.NoError(s.Resume(context.Background()))
	r.Equal(expect, n)
}

func TestWaitGroupMisuse(t *testing.T) {
	r := require.New(t)

	var wg WaitGroup
	wg.Wait(nil)
	r.PanicsWithValue("corochan: negative WaitGroup counter", func() {
		wg.Done()
	})
}

func TestSema(t *testing.T) {
	r := require.New(t)

	s := NewSchedule()

	var sem sema
	var events []string
	s.Gogo(func(_ context.Context, task *Task) {
		sem.acquire(task)
		events = append(events, "acquired")
	})
	s.Gogo(func(_ context.Context, task *Task) {
		events = append(events, "release")
		sem.release()
		sem.release()
	})

	r.NoError(s.Resume(context.Background()))
	r.Equal([]string{"release", "acquired"}, events)
	r.Equal(uint32(1), sem.v)
}

func TestWaitGroupStalledWaiterUnlinked(t *testing.T) {
	r := require.New(t)

	s := NewSchedule()

	var wg WaitGroup
	wg.Add(1)
	s.Gogo(func(_ context.Context, task *Task) {
		wg.Wait(task)
	})

	r.ErrorIs(s.Resume(context.Background()), ErrStalled)
	r.True(wg.sema.w.empty())
}
