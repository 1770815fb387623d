package corochan

// Mutex provides mutual exclusion across suspension points. A task
// holding the lock may park on a channel; other tasks calling Lock
// park until it is released.
type Mutex struct {
	noCopy noCopy // Prevents copying of the mutex
	r      *Task  // Task holding the lock
	sema   sema   // Semaphore for queuing waiting tasks
}

// Lock acquires the mutex for task, parking it while another task
// holds the lock.
func (m *Mutex) Lock(task *Task) {
	if m.r == nil {
		m.r = task
		return
	}

	m.sema.acquire(task)
	m.r = task
}

// Unlock releases the mutex. The oldest waiting task, if any, is
// queued on its schedule and owns the lock once it runs.
func (m *Mutex) Unlock() {
	if m.r == nil {
		panic("corochan: unlock of unlocked mutex")
	}

	if m.sema.w.empty() {
		m.r = nil
		return
	}
	m.sema.release()
}

// WaitCount returns the number of tasks waiting to acquire the mutex.
func (m *Mutex) WaitCount() int {
	return m.sema.w.len()
}
