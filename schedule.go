package corochan

import (
	"context"
	"fmt"
	"runtime/trace"
	"slices"

	"github.com/gammazero/deque"
)

// Schedule is the fallback resumer for a set of tasks and the
// channels they share. Tasks hand control to each other directly
// wherever they can; the schedule runs newly spawned and requeued
// tasks and drains watched channels until a full pass makes no
// progress.
type Schedule struct {
	noCopy  noCopy
	ctx     context.Context
	runq    deque.Deque[*Task]
	tasks   []*Task
	chans   []Drainer
	watched map[Drainer]struct{}
	live    int
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{watched: make(map[Drainer]struct{})}
}

// Gogo queues a top-level task. It starts when Resume runs.
func (s *Schedule) Gogo(fn func(context.Context, *Task)) *Task {
	task := newTask(s, nil, fn)
	s.ready(task)
	return task
}

// Go queues a top-level task that only takes a context.
func (s *Schedule) Go(fn func(context.Context)) *Task {
	return s.Gogo(s.Fn(fn))
}

// Fn adapts a context-only function to the Task-based function
// signature.
func (s *Schedule) Fn(fn func(context.Context)) func(context.Context, *Task) {
	return func(ctx context.Context, _ *Task) { fn(ctx) }
}

// Watch adds channels to the drain set. Channels a task parks on are
// watched automatically; Watch is only needed for channels whose
// waiters were parked elsewhere.
func (s *Schedule) Watch(chans ...Drainer) {
	for _, d := range chans {
		s.watch(d)
	}
}

func (s *Schedule) watch(d Drainer) {
	if _, ok := s.watched[d]; ok {
		return
	}
	s.watched[d] = struct{}{}
	s.chans = append(s.chans, d)
}

func (s *Schedule) ready(t *Task) {
	t.state = taskReady
	s.runq.PushBack(t)
}

// Resume runs the schedule to a fixed point: it runs ready tasks in
// FIFO order, then drains every watched channel, dropping the ones
// that became quiescent, and repeats until a pass resumes nobody.
// Tasks still parked at that point are cancelled and Resume returns
// an error wrapping ErrStalled.
func (s *Schedule) Resume(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tracer *trace.Task
	ctx, tracer = trace.NewTask(ctx, taskTraceTaskType)
	defer tracer.End()

	s.ctx = ctx
	defer s.teardown()

	trace.Logf(ctx, taskTraceCategory, "LOOP")

	for {
		for s.runq.Len() > 0 {
			run(s.runq.PopFront())
		}

		trace.Logf(ctx, taskTraceCategory, "DRAIN %v", len(s.chans))

		progress := false
		for _, d := range s.chans {
			if d.DrainOnce() {
				progress = true
			}
		}

		s.chans = slices.DeleteFunc(s.chans, func(d Drainer) bool {
			if d.Quiescent() {
				delete(s.watched, d)
				return true
			}
			return false
		})
		s.tasks = slices.DeleteFunc(s.tasks, (*Task).Done)

		if !progress && s.runq.Len() == 0 {
			break
		}
	}

	if s.live > 0 {
		trace.Logf(ctx, taskTraceCategory, "LOOP STALLED %v", s.live)
		return fmt.Errorf("%w: %d tasks parked on %d channels", ErrStalled, s.live, len(s.chans))
	}

	trace.Log(ctx, taskTraceCategory, "LOOP DONE")
	return nil
}

// Live returns the number of tasks that have not finished.
func (s *Schedule) Live() int {
	return s.live
}

func (s *Schedule) teardown() {
	for _, t := range s.tasks {
		// A running task here is unwinding a panic; leave it to coro.
		if t.state == taskParked || t.state == taskReady {
			t.Log("STOP")
			t.stop()
		}
	}
	s.tasks = nil
}

// Drain drives chans without a schedule, calling DrainOnce on each
// live channel until a full pass resumes nobody. It returns the
// number of channels that are not quiescent afterwards.
func Drain(chans ...Drainer) int {
	live := slices.Clone(chans)
	for progress := true; progress && len(live) > 0; {
		progress = false
		for _, d := range live {
			if d.DrainOnce() {
				progress = true
			}
		}
		live = slices.DeleteFunc(live, Drainer.Quiescent)
	}
	return len(live)
}
