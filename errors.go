package corochan

import "errors"

var (
	// ErrClosed is raised when a value is sent on a closed channel.
	ErrClosed = errors.New("corochan: send on closed channel")

	// ErrProtocol is raised when a parked receiver is resumed while the
	// channel has no buffered value, no pending sender and is not
	// closed. It indicates a bug in whatever resumed the receiver.
	ErrProtocol = errors.New("corochan: receiver resumed without value or close")

	// ErrStalled is returned by Schedule.Resume when the schedule
	// reaches a fixed point with tasks still parked.
	ErrStalled = errors.New("corochan: schedule stalled")
)
