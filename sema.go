package corochan

// sema implements a semaphore for task synchronization. It manages a
// count of available resources and a queue of parked tasks.
type sema struct {
	noCopy noCopy          // Prevents copying of the semaphore
	v      uint32          // Value (available resources)
	w      waitq[struct{}] // Parked tasks, oldest first
}

// acquire takes one resource for t, parking it when none is
// available. A parked task returns control to its resumer.
func (s *sema) acquire(t *Task) {
	if s.v > 0 {
		s.v--
		return
	}

	w := &waiter[struct{}]{task: t}
	s.w.push(w)
	t.Log("SEMA PARK")
	t.suspend(nil, func() { s.w.remove(w) })
}

// release hands a resource to the oldest parked task, or banks it
// when nobody waits. The woken task is queued on its schedule rather
// than resumed here, so release is safe to call from a running task.
func (s *sema) release() {
	w := s.w.pop()
	if w == nil {
		s.v++
		return
	}

	w.task.Log("SEMA WAKE")
	w.task.sched.ready(w.task)
}
