// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/ik5/lipsync/stream"
)

// Discard accepts and drops everything.
type Discard struct{}

func (Discard) OnStart(context.Context) error         { return nil }
func (Discard) OnFrame(context.Context, []byte) error { return nil }
func (Discard) OnStop(context.Context) error          { return nil }

type multi struct {
	sinks   []stream.Sink
	started int
}

// Multi delivers every callback to each sink in order. If a sink fails to
// start, the sinks started before it are stopped. A frame error from any sink
// aborts delivery of that frame. OnStop reaches every started sink.
//
// The returned sink is single use and not safe for concurrent streams.
func Multi(sinks ...stream.Sink) stream.Sink {
	return &multi{sinks: sinks}
}

func (m *multi) OnStart(ctx context.Context) error {
	m.started = 0
	for i, s := range m.sinks {
		if err := s.OnStart(ctx); err != nil {
			return errors.Join(fmt.Errorf("sink %d: %w", i, err), m.OnStop(context.WithoutCancel(ctx)))
		}
		m.started++
	}
	return nil
}

func (m *multi) OnFrame(ctx context.Context, frame []byte) error {
	for i, s := range m.sinks[:m.started] {
		if err := s.OnFrame(ctx, frame); err != nil {
			return fmt.Errorf("sink %d: %w", i, err)
		}
	}
	return nil
}

func (m *multi) OnStop(ctx context.Context) error {
	var errs []error
	for i, s := range m.sinks[:m.started] {
		if err := s.OnStop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	m.started = 0
	return errors.Join(errs...)
}
