// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/lipsync/audio"
)

const (
	// DefaultFrameSize is 10 ms of 16 kHz mono 16-bit audio.
	DefaultFrameSize = 320
	DefaultInterval  = 10 * time.Millisecond
)

// Sink receives a paced stream of PCM frames. Frames are borrowed: a sink
// that keeps one past the OnFrame call must copy it.
type Sink interface {
	OnStart(ctx context.Context) error
	OnFrame(ctx context.Context, frame []byte) error
	OnStop(ctx context.Context) error
}

// Metrics observes streaming sessions.
type Metrics interface {
	StreamStarted()
	FrameSent(bytes int)
	StreamFinished(status string, elapsed time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) StreamStarted()                      {}
func (nopMetrics) FrameSent(int)                       {}
func (nopMetrics) StreamFinished(string, time.Duration) {}

// Stats summarizes one streaming session.
type Stats struct {
	SessionID string
	Frames    int
	Bytes     int
	Started   time.Time
	Finished  time.Time
}

// Elapsed is the wall time the session took.
func (s Stats) Elapsed() time.Duration { return s.Finished.Sub(s.Started) }

// Streamer delivers PCM to a Sink one frame per interval.
type Streamer struct {
	frameSize int
	interval  time.Duration
	logger    *slog.Logger
	metrics   Metrics
}

type Option func(*Streamer)

func WithLogger(l *slog.Logger) Option {
	return func(s *Streamer) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Streamer) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithFrameSize sets the frame size in bytes. Non-positive or odd sizes are ignored.
func WithFrameSize(n int) Option {
	return func(s *Streamer) {
		if n > 0 && n%2 == 0 {
			s.frameSize = n
		}
	}
}

// WithInterval sets the pause after each frame. Zero disables pacing.
func WithInterval(d time.Duration) Option {
	return func(s *Streamer) {
		if d >= 0 {
			s.interval = d
		}
	}
}

func New(opts ...Option) *Streamer {
	s := &Streamer{
		frameSize: DefaultFrameSize,
		interval:  DefaultInterval,
		logger:    slog.New(slog.DiscardHandler),
		metrics:   nopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Streamer) FrameSize() int          { return s.frameSize }
func (s *Streamer) Interval() time.Duration { return s.interval }

// Stream blocks until buf has been delivered to sink, ctx is cancelled or the
// sink fails. Once OnStart succeeds OnStop is called exactly once, whatever
// the outcome. It runs for roughly interval times the frame count, so callers
// on an interactive path should use Start instead.
func (s *Streamer) Stream(ctx context.Context, buf audio.Buffer, sink Sink) (Stats, error) {
	return s.run(ctx, uuid.NewString(), buf.Bytes(), sink)
}

// StreamPCM is Stream over raw little-endian 16-bit mono bytes. An odd
// length is delivered as is; the last frame carries the stray byte.
func (s *Streamer) StreamPCM(ctx context.Context, pcm []byte, sink Sink) (Stats, error) {
	return s.run(ctx, uuid.NewString(), pcm, sink)
}

func (s *Streamer) run(ctx context.Context, id string, pcm []byte, sink Sink) (stats Stats, err error) {
	stats = Stats{SessionID: id, Started: time.Now()}
	logger := s.logger.With(slog.String("session", id))

	s.metrics.StreamStarted()
	defer func() {
		stats.Finished = time.Now()
		status := Status(err)
		s.metrics.StreamFinished(status, stats.Elapsed())

		attrs := []any{
			slog.String("status", status),
			slog.Int("frames", stats.Frames),
			slog.Int("bytes", stats.Bytes),
			slog.Duration("elapsed", stats.Elapsed()),
		}
		if err != nil {
			logger.Warn("stream ended", append(attrs, slog.String("error", err.Error()))...)
			return
		}
		logger.Info("stream ended", attrs...)
	}()

	logger.Debug("stream starting",
		slog.Int("bytes", len(pcm)),
		slog.Int("frames", FrameCount(len(pcm), s.frameSize)),
	)

	if err := sink.OnStart(ctx); err != nil {
		return stats, &SinkError{Op: OpStart, Err: err}
	}

	err = s.pace(ctx, pcm, sink, &stats)

	if stopErr := sink.OnStop(context.WithoutCancel(ctx)); stopErr != nil {
		err = errors.Join(err, &SinkError{Op: OpStop, Frame: stats.Frames, Err: stopErr})
	}

	return stats, err
}

func (s *Streamer) pace(ctx context.Context, pcm []byte, sink Sink, stats *Stats) error {
	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for i, frame := range Frames(pcm, s.frameSize) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("stream: before frame %d: %w", i, err)
		}

		if err := sink.OnFrame(ctx, frame); err != nil {
			return &SinkError{Op: OpFrame, Frame: i, Err: err}
		}
		stats.Frames++
		stats.Bytes += len(frame)
		s.metrics.FrameSent(len(frame))

		if tick == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("stream: after frame %d: %w", i, ctx.Err())
		case <-tick:
		}
	}

	return nil
}
