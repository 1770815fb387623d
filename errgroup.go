package corochan

import "context"

// ErrGroup runs a group of child tasks and collects the first error
// any of them returns. The group's context is cancelled with that
// error so the remaining tasks can observe it through context.Cause.
type ErrGroup interface {
	// Go starts a new task with the group's context.
	Go(func(context.Context) error)
	// GoWithContext starts a new task with the specified context.
	GoWithContext(context.Context, func(context.Context) error)
	// Wait parks task until every task in the group has returned and
	// returns the first error encountered.
	Wait(*Task) error
}

type errGroup struct {
	task   *Task           // Task that created the group
	ctx    context.Context // Context shared by all tasks in the group
	cancel func(error)     // Cancels ctx with the first error
	wg     WaitGroup       // Tracks tasks still running
	err    error           // First error returned by a task
}

func newErrGroup(task *Task) *errGroup {
	ctx, cancel := context.WithCancelCause(task.ctx)
	return &errGroup{task: task, ctx: ctx, cancel: cancel}
}

func (g *errGroup) Go(f func(context.Context) error) {
	g.goctx(g.ctx, f)
}

// GoWithContext starts a task whose context derives from ctx. The
// context must belong to the task that created the group.
func (g *errGroup) GoWithContext(ctx context.Context, f func(context.Context) error) {
	if task := MustTaskFromContext(ctx); task != g.task {
		panic("corochan: ctx task does not match errgroup task")
	}
	g.goctx(ctx, f)
}

func (g *errGroup) goctx(ctx context.Context, f func(context.Context) error) {
	g.wg.Add(1)
	g.task.goctx(ctx, func(ctx context.Context) {
		defer g.wg.Done()
		if err := f(ctx); err != nil && g.err == nil {
			g.err = err
			g.cancel(err)
		}
	})
}

func (g *errGroup) Wait(task *Task) error {
	g.wg.Wait(task)
	g.cancel(g.err)
	return g.err
}
