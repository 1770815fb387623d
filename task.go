package corochan

import (
	"context"
	"fmt"
	"runtime/trace"
	"strings"

	"github.com/webriots/coro"
)

const (
	taskTraceTaskType   = "corochan-schedule"
	taskTraceRegionType = "corochan-task"
	taskTraceCategory   = "corochan"
)

type taskState uint8

const (
	taskReady taskState = iota // queued, or created and not started
	taskRunning
	taskParked
	taskDone
)

// Task is a suspendable computation driven by a Schedule. A task
// suspends inside Channel.Recv, Channel.Send, WaitGroup.Wait and
// Yield, and is resumed either directly by the peer that satisfied it
// or by the schedule's drain loop.
type Task struct {
	ctx      context.Context
	base     context.Context
	fn       func(context.Context, *Task)
	yield    func(*Task) struct{}
	resume   func(struct{}) (*Task, bool)
	cancel   func()
	sched    *Schedule
	parent   *Task
	children WaitGroup
	state    taskState
	unpark   func() // Unlinks the waiter t is parked on
}

func newTask(sched *Schedule, parent *Task, fn func(context.Context, *Task)) *Task {
	task := &Task{
		fn:     fn,
		sched:  sched,
		parent: parent,
	}

	if parent != nil {
		parent.children.Add(1)
	}

	sched.tasks = append(sched.tasks, task)
	sched.live++
	return task
}

// start creates the coroutine backing t. Its yield value names the
// task to run next, nil meaning "return to whoever resumed me". The
// task context derives from the spawn context, the parent's, or the
// schedule's, whichever is set first.
func (t *Task) start() {
	ctx := t.base
	if ctx == nil && t.parent != nil {
		ctx = t.parent.ctx
	}
	if ctx == nil {
		ctx = t.sched.ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	t.ctx = withTaskContext(ctx, t)

	resume, cancel := coro.New(
		func(yield func(*Task) struct{}, _ func() struct{}) (next *Task) {
			region := trace.StartRegion(t.ctx, taskTraceRegionType)
			defer region.End()

			t.yield = yield
			t.fn(t.ctx, t)

			return
		},
	)

	t.resume = resume
	t.cancel = cancel
}

// run resumes t, then every task named by a suspend step, until a
// step names no one. Chained tasks never nest: each one returns here
// before the next is resumed.
func run(t *Task) {
	for t != nil {
		t = t.step()
	}
}

func (t *Task) step() *Task {
	switch t.state {
	case taskRunning:
		panic("corochan: resume of running task")
	case taskDone:
		panic("corochan: resume of finished task")
	}

	if t.resume == nil {
		t.start()
	}

	t.state = taskRunning
	t.unpark = nil
	t.Log("RUN")

	next, ok := t.resume(struct{}{})
	if !ok {
		t.finish()
		return nil
	}
	return next
}

func (t *Task) finish() {
	t.Log("DONE")
	t.state = taskDone
	t.sched.live--
	if t.parent != nil {
		t.parent.children.Done()
	}
}

// stop tears down a task that never finished, unlinking it from
// whatever queue it is parked on.
func (t *Task) stop() {
	if t.unpark != nil {
		t.unpark()
		t.unpark = nil
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.state = taskDone
	t.sched.live--
}

// suspend parks t and hands control to next, or back to the resumer
// when next is nil. unpark removes t's waiter if t is torn down while
// parked.
func (t *Task) suspend(next *Task, unpark func()) {
	t.state = taskParked
	t.unpark = unpark
	t.yield(next)
}

// Gogo spawns a child task on the same schedule. The child starts
// once the current task suspends and the schedule reaches it.
func (t *Task) Gogo(fn func(context.Context, *Task)) *Task {
	task := newTask(t.sched, t, fn)
	task.Log("GO")
	t.sched.ready(task)
	return task
}

// goctx spawns a child whose context derives from ctx instead of the
// parent's.
func (t *Task) goctx(ctx context.Context, fn func(context.Context)) *Task {
	task := t.Gogo(t.sched.Fn(fn))
	task.base = ctx
	return task
}

// Go spawns a child task that only needs a context. The task is
// available to fn through TaskFromContext.
func (t *Task) Go(fn func(context.Context)) *Task {
	return t.Gogo(t.sched.Fn(fn))
}

// Group returns an ErrGroup whose tasks are children of t.
func (t *Task) Group() ErrGroup {
	return newErrGroup(t)
}

// Wait suspends t until every child it spawned has finished.
func (t *Task) Wait() {
	t.Log("WAIT")
	t.children.Wait(t)
}

// Yield requeues t behind the other ready tasks and returns control
// to the schedule.
func (t *Task) Yield() {
	t.Log("YIELD")
	t.sched.ready(t)
	t.yield(nil)
}

// Done reports whether the task has returned.
func (t *Task) Done() bool {
	return t.state == taskDone
}

// Context returns the task's context. It is nil until the task first
// runs.
func (t *Task) Context() context.Context {
	return t.ctx
}

func (t *Task) Log(msg string) {
	if t != nil && t.ctx != nil && trace.IsEnabled() {
		var sb strings.Builder
		taskpath(&sb, t)
		sb.WriteRune(' ')
		sb.WriteString(msg)
		trace.Log(t.ctx, taskTraceCategory, sb.String())
	}
}

func (t *Task) Logf(format string, args ...any) {
	if t != nil && t.ctx != nil && trace.IsEnabled() {
		var sb strings.Builder
		taskpath(&sb, t)
		sb.WriteRune(' ')
		fmt.Fprintf(&sb, format, args...)
		trace.Log(t.ctx, taskTraceCategory, sb.String())
	}
}

func taskpath(sb *strings.Builder, t *Task) {
	if t == nil {
		return
	}
	taskpath(sb, t.parent)
	fmt.Fprintf(sb, "%p|", t)
}
