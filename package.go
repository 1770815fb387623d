// Package corochan provides a cooperative channel for coroutine-like
// tasks with direct hand-off between the two parties of a transfer.
//
// Everything runs on one logical thread: at most one task executes at
// a time and tasks resume each other explicitly. When a task cannot
// complete a channel operation it parks and names the peer to run
// next instead of bouncing through a scheduler loop.
//
// Key components:
//
//   - Channel: A bounded FIFO of values, or a rendezvous when its
//     capacity is zero. Recv and Send either complete synchronously or
//     park the calling task on an intrusive waiter queue.
//
//   - Task: A suspendable computation built on coroutines. Its suspend
//     step yields the next task to resume, so chains of hand-offs run
//     without growing the stack.
//
//   - Schedule: The fallback resumer. It runs spawned tasks and drains
//     every channel a task parked on until no further progress is
//     possible, then reports tasks left parked.
//
//   - Drain: The same fixed-point loop over a set of channels without
//     a schedule.
//
//   - WaitGroup: Lets a task park until a set of other tasks finish.
package corochan
