// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"

	"github.com/google/uuid"

	"github.com/ik5/lipsync/audio"
)

// Session is a stream running on its own goroutine.
type Session struct {
	ID string

	cancel context.CancelFunc
	done   chan struct{}
	stats  Stats
	err    error
}

// Start streams buf to sink in the background and returns immediately.
// Cancelling ctx or calling Session.Cancel stops the stream at the next frame
// boundary; OnStop still runs.
func (s *Streamer) Start(ctx context.Context, buf audio.Buffer, sink Sink) *Session {
	ctx, cancel := context.WithCancel(ctx)
	sess := &Session{
		ID:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sess.done)
		defer cancel()
		sess.stats, sess.err = s.run(ctx, sess.ID, buf.Bytes(), sink)
	}()

	return sess
}

// Wait blocks until the session ends.
func (s *Session) Wait() (Stats, error) {
	<-s.done
	return s.stats, s.err
}

func (s *Session) Cancel() { s.cancel() }

func (s *Session) Done() <-chan struct{} { return s.done }
