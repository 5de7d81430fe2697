// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"errors"
	"fmt"
)

// Op names the sink callback that failed.
type Op string

const (
	OpStart Op = "start"
	OpFrame Op = "frame"
	OpStop  Op = "stop"
)

// SinkError reports a failure raised by a Sink. Frame is the zero-based index
// of the frame being delivered for OpFrame, and the number of frames already
// delivered otherwise.
type SinkError struct {
	Op    Op
	Frame int
	Err   error
}

func (e *SinkError) Error() string {
	if e.Op == OpFrame {
		return fmt.Sprintf("stream: sink %s %d: %v", e.Op, e.Frame, e.Err)
	}
	return fmt.Sprintf("stream: sink %s: %v", e.Op, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Status classifies the error returned by Stream or Session.Wait.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCancelled
	default:
		return StatusFailed
	}
}
