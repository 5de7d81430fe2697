// SPDX-License-Identifier: EPL-2.0

// Package natssink publishes a PCM frame stream to NATS.
//
// Every session gets its own subject tree:
//
//	<prefix>.<session>.start  JSON Announcement
//	<prefix>.<session>.frame  raw PCM, sequence in the Lipsync-Seq header
//	<prefix>.<session>.stop   JSON Summary
package natssink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	DefaultPrefix = "lipsync.audio"

	HeaderSession = "Lipsync-Session"
	HeaderSeq     = "Lipsync-Seq"

	// FlushTimeout bounds the final flush when OnStop gets a context
	// without a deadline.
	FlushTimeout = 5 * time.Second
)

var ErrNoConn = errors.New("natssink: nil connection")

// Announcement opens a session on <prefix>.<session>.start.
type Announcement struct {
	Session    string `json:"session"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Bits       int    `json:"bits"`
}

// Summary closes a session on <prefix>.<session>.stop.
type Summary struct {
	Session string `json:"session"`
	Frames  int    `json:"frames"`
	Bytes   int    `json:"bytes"`
}

// Publisher is the part of *nats.Conn the sink uses.
type Publisher interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

// Sink implements stream.Sink. A Sink may be reused for consecutive streams
// but not for concurrent ones.
type Sink struct {
	pub        Publisher
	prefix     string
	sampleRate int
	log        *slog.Logger

	session string
	frames  int
	bytes   int
}

type Option func(*Sink)

func WithPrefix(p string) Option {
	return func(s *Sink) {
		if p != "" {
			s.prefix = p
		}
	}
}

func WithSampleRate(rate int) Option {
	return func(s *Sink) { s.sampleRate = rate }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) {
		if l != nil {
			s.log = l
		}
	}
}

func New(pub Publisher, opts ...Option) (*Sink, error) {
	if pub == nil {
		return nil, ErrNoConn
	}

	s := &Sink{
		pub:        pub,
		prefix:     DefaultPrefix,
		sampleRate: 16000,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Session is the id of the current or last stream.
func (s *Sink) Session() string { return s.session }

// Subject returns the subject for kind ("start", "frame", "stop") in the
// current session.
func (s *Sink) Subject(kind string) string {
	return s.prefix + "." + s.session + "." + kind
}

func (s *Sink) OnStart(ctx context.Context) error {
	s.session = uuid.NewString()
	s.frames, s.bytes = 0, 0

	payload, err := json.Marshal(Announcement{
		Session:    s.session,
		SampleRate: s.sampleRate,
		Channels:   1,
		Bits:       16,
	})
	if err != nil {
		return fmt.Errorf("natssink: encode start: %w", err)
	}

	if err := s.publish("start", payload, nil); err != nil {
		return err
	}

	s.log.Debug("nats stream opened", slog.String("subject", s.Subject("start")))
	return nil
}

func (s *Sink) OnFrame(_ context.Context, frame []byte) error {
	header := nats.Header{}
	header.Set(HeaderSeq, strconv.Itoa(s.frames))

	if err := s.publish("frame", frame, header); err != nil {
		return err
	}

	s.frames++
	s.bytes += len(frame)
	return nil
}

func (s *Sink) OnStop(ctx context.Context) error {
	payload, err := json.Marshal(Summary{Session: s.session, Frames: s.frames, Bytes: s.bytes})
	if err != nil {
		return fmt.Errorf("natssink: encode stop: %w", err)
	}

	if err := s.publish("stop", payload, nil); err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, FlushTimeout)
		defer cancel()
	}

	if err := s.pub.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("natssink: flush: %w", err)
	}

	s.log.Debug("nats stream closed",
		slog.String("subject", s.Subject("stop")),
		slog.Int("frames", s.frames),
	)
	return nil
}

func (s *Sink) publish(kind string, data []byte, header nats.Header) error {
	if header == nil {
		header = nats.Header{}
	}
	header.Set(HeaderSession, s.session)

	msg := &nats.Msg{
		Subject: s.Subject(kind),
		Data:    data,
		Header:  header,
	}
	if err := s.pub.PublishMsg(msg); err != nil {
		return fmt.Errorf("natssink: publish %s: %w", msg.Subject, err)
	}
	return nil
}
