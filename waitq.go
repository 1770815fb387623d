package corochan

// waiter is a parked Recv, Send or Wait call. The record is its own
// queue node: it lives in at most one waitq at a time and is unlinked
// when popped.
type waiter[T any] struct {
	next    *waiter[T] // Next waiter in the queue
	task    *Task      // Task to resume once satisfied
	value   T          // Value offered by a parked sender
	pending bool       // Whether value has not been taken yet
}

// give hands over the pending value and clears it so it cannot be
// taken twice.
func (w *waiter[T]) give() T {
	var z T
	v := w.value
	w.value = z
	w.pending = false
	return v
}

// waitq is an intrusive FIFO of waiters. It links existing records
// and never allocates.
type waitq[T any] struct {
	head *waiter[T]
	tail *waiter[T]
	n    int
}

func (q *waitq[T]) push(w *waiter[T]) {
	w.next = nil
	if q.tail == nil {
		q.head = w
	} else {
		q.tail.next = w
	}
	q.tail = w
	q.n++
}

// pop removes and returns the oldest waiter, or nil if the queue is
// empty.
func (q *waitq[T]) pop() *waiter[T] {
	w := q.head
	if w == nil {
		return nil
	}
	q.head = w.next
	if q.head == nil {
		q.tail = nil
	}
	w.next = nil
	q.n--
	return w
}

// remove unlinks w from the queue and reports whether it was queued.
// It walks the queue and is only used when tearing down a task.
func (q *waitq[T]) remove(w *waiter[T]) bool {
	var prev *waiter[T]
	for cur := q.head; cur != nil; prev, cur = cur, cur.next {
		if cur != w {
			continue
		}
		if prev == nil {
			q.head = cur.next
		} else {
			prev.next = cur.next
		}
		if q.tail == cur {
			q.tail = prev
		}
		cur.next = nil
		q.n--
		return true
	}
	return false
}

func (q *waitq[T]) empty() bool {
	return q.head == nil
}

func (q *waitq[T]) len() int {
	return q.n
}
