package corochan

import (
	"iter"

	"github.com/gammazero/deque"
)

// Drainer is implemented by anything the schedule can drive to a
// fixed point. Every *Channel[T] is a Drainer.
type Drainer interface {
	// DrainOnce resumes every currently satisfiable waiter and
	// reports whether it resumed any.
	DrainOnce() bool
	// Quiescent reports whether no further progress is possible.
	Quiescent() bool
}

// Channel is a bounded FIFO of values passed between tasks of one
// schedule. A capacity of zero makes every send a rendezvous with a
// receiver.
//
// A task that cannot complete a Recv or Send parks on the channel and
// names a peer to run next: a parked sender hands control straight to
// the oldest parked receiver, and a parking receiver hands control to
// the oldest sender whose value it already took. Only when there is
// no such peer does control return to the schedule.
type Channel[T any] struct {
	noCopy    noCopy
	capacity  int
	buf       deque.Deque[T]
	closed    bool
	receivers waitq[T] // Parked receivers, oldest first
	senders   waitq[T] // Parked senders still holding their value
	acked     waitq[T] // Parked senders whose value was taken
}

// NewChannel returns an empty, open channel buffering up to capacity
// values.
func NewChannel[T any](capacity int) *Channel[T] {
	if capacity < 0 {
		panic("corochan: negative channel capacity")
	}
	return &Channel[T]{capacity: capacity}
}

// Recv receives the next value. It suspends t while the channel has
// no buffered value, no parked sender and is still open. Once the
// channel is closed and drained Recv returns the zero value and false
// without suspending.
func (c *Channel[T]) Recv(t *Task) (T, bool) {
	if !c.recvReady() {
		if t == nil {
			panic("corochan: Recv would park without a task")
		}

		w := &waiter[T]{task: t}
		c.receivers.push(w)
		c.watch(t)

		var next *Task
		if s := c.acked.pop(); s != nil {
			next = s.task
			t.Log("RECV PARK CHAIN")
		} else {
			t.Log("RECV PARK")
		}
		t.suspend(next, c.unlinker(w))
	}

	return c.take()
}

func (c *Channel[T]) recvReady() bool {
	return c.buf.Len() > 0 || !c.senders.empty() || c.closed
}

// take removes the next value. Buffered values go first; taking one
// moves the oldest parked sender's value into the freed slot. A sender
// whose value was taken is moved to acked and resumed later with
// nothing left to do.
func (c *Channel[T]) take() (T, bool) {
	if c.buf.Len() > 0 {
		v := c.buf.PopFront()
		if c.buf.Len() < c.capacity {
			if s := c.senders.pop(); s != nil {
				c.buf.PushBack(s.give())
				c.acked.push(s)
			}
		}
		return v, true
	}

	if s := c.senders.pop(); s != nil {
		v := s.give()
		c.acked.push(s)
		return v, true
	}

	if !c.closed {
		panic(ErrProtocol)
	}

	var z T
	return z, false
}

// Send sends v. It returns at once while the buffer has room;
// otherwise t parks until a receiver takes v. Sending on a closed
// channel panics with ErrClosed.
func (c *Channel[T]) Send(t *Task, v T) {
	if c.closed {
		panic(ErrClosed)
	}

	if c.buf.Len() < c.capacity {
		c.buf.PushBack(v)
		return
	}

	if t == nil {
		panic("corochan: Send would park without a task")
	}

	w := &waiter[T]{task: t, value: v, pending: true}
	c.senders.push(w)
	c.watch(t)

	var next *Task
	if r := c.receivers.pop(); r != nil {
		next = r.task
		t.Log("SEND PARK CHAIN")
	} else {
		t.Log("SEND PARK")
	}
	t.suspend(next, c.unlinker(w))

	// The drain loop resumes senders whose value is still pending once
	// the buffer has room or the channel is closed.
	if w.pending {
		c.buf.PushBack(w.give())
	}
}

// All returns an iterator receiving values from c on behalf of t
// until the channel is closed and drained.
func (c *Channel[T]) All(t *Task) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := c.Recv(t)
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Close marks the channel closed. It wakes no one; parked receivers
// observe the close on the next drain.
func (c *Channel[T]) Close() {
	c.closed = true
}

// Closed reports whether Close has been called.
func (c *Channel[T]) Closed() bool {
	return c.closed
}

// Quiescent reports whether the channel is closed, its buffer is empty
// and no task is parked on it.
func (c *Channel[T]) Quiescent() bool {
	return c.closed &&
		c.buf.Len() == 0 &&
		c.receivers.empty() &&
		c.senders.empty() &&
		c.acked.empty()
}

// Len returns the number of buffered values.
func (c *Channel[T]) Len() int {
	return c.buf.Len()
}

// Cap returns the buffer capacity.
func (c *Channel[T]) Cap() int {
	return c.capacity
}

// DrainOnce resumes, in order: receivers that can now complete, all
// acknowledged senders, then senders that can now complete. It
// reports whether any task was resumed.
func (c *Channel[T]) DrainOnce() bool {
	n := 0

	for (c.closed || c.buf.Len() > 0) && !c.receivers.empty() {
		run(c.receivers.pop().task)
		n++
	}

	for !c.acked.empty() {
		run(c.acked.pop().task)
		n++
	}

	for (c.closed || c.buf.Len() < c.capacity) && !c.senders.empty() {
		run(c.senders.pop().task)
		n++
	}

	return n > 0
}

// unlinker returns a func removing w from whichever queue holds it. A
// parked sender moves from senders to acked without being resumed.
func (c *Channel[T]) unlinker(w *waiter[T]) func() {
	return func() {
		if !c.receivers.remove(w) && !c.senders.remove(w) {
			c.acked.remove(w)
		}
	}
}

func (c *Channel[T]) watch(t *Task) {
	if t != nil && t.sched != nil {
		t.sched.watch(c)
	}
}
