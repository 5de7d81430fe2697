// SPDX-License-Identifier: EPL-2.0

// Package wssink streams PCM frames to a renderer over a WebSocket.
//
// Control messages are JSON text frames wrapped in a Message envelope
// ("stream/start", "stream/end"). Audio travels in binary frames:
//
//	byte 0     message type (0 = PCM)
//	bytes 1-8  big-endian position of the frame in microseconds
//	bytes 9-   little-endian 16-bit mono PCM
package wssink

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	TypeStart = "stream/start"
	TypeEnd   = "stream/end"

	BinaryPCM    byte = 0
	binaryHeader      = 9

	defaultWriteTimeout = 5 * time.Second
)

// Message is the JSON envelope for control frames.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type StreamStart struct {
	Session    string `json:"session"`
	Codec      string `json:"codec"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BitDepth   int    `json:"bit_depth"`
}

type StreamEnd struct {
	Session string `json:"session"`
	Frames  int    `json:"frames"`
}

// Sink implements stream.Sink over one WebSocket connection.
type Sink struct {
	conn         *websocket.Conn
	sampleRate   int
	writeTimeout time.Duration
	log          *slog.Logger

	mu      sync.Mutex
	session string
	frames  int
	samples int64
	buf     []byte
}

type Option func(*Sink)

func WithSampleRate(rate int) Option {
	return func(s *Sink) {
		if rate > 0 {
			s.sampleRate = rate
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) {
		if l != nil {
			s.log = l
		}
	}
}

// Dial connects to the renderer at url (ws:// or wss://).
func Dial(ctx context.Context, url string, header http.Header, opts ...Option) (*Sink, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("wssink: dial %s: %w", url, err)
	}
	return New(conn, opts...), nil
}

// New wraps an established connection. The Sink owns conn from here on.
func New(conn *websocket.Conn, opts ...Option) *Sink {
	s := &Sink{
		conn:         conn,
		sampleRate:   16000,
		writeTimeout: defaultWriteTimeout,
		log:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) Session() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Sink) OnStart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = uuid.NewString()
	s.frames, s.samples = 0, 0

	return s.writeJSON(ctx, Message{
		Type: TypeStart,
		Payload: StreamStart{
			Session:    s.session,
			Codec:      "pcm",
			SampleRate: s.sampleRate,
			Channels:   1,
			BitDepth:   16,
		},
	})
}

func (s *Sink) OnFrame(ctx context.Context, frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	need := binaryHeader + len(frame)
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	msg := s.buf[:need]
	msg[0] = BinaryPCM
	binary.BigEndian.PutUint64(msg[1:binaryHeader], uint64(s.samples*1_000_000/int64(s.sampleRate)))
	copy(msg[binaryHeader:], frame)

	if err := s.setDeadline(ctx); err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
		return fmt.Errorf("wssink: write frame: %w", err)
	}

	s.frames++
	s.samples += int64(len(frame) / 2)
	return nil
}

func (s *Sink) OnStop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("websocket stream closed", slog.String("session", s.session), slog.Int("frames", s.frames))
	return s.writeJSON(ctx, Message{
		Type:    TypeEnd,
		Payload: StreamEnd{Session: s.session, Frames: s.frames},
	})
}

// Close sends a close frame and closes the connection.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(s.writeTimeout)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, deadline)
	return s.conn.Close()
}

func (s *Sink) writeJSON(ctx context.Context, msg Message) error {
	if err := s.setDeadline(ctx); err != nil {
		return err
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("wssink: write %s: %w", msg.Type, err)
	}
	return nil
}

func (s *Sink) setDeadline(ctx context.Context) error {
	deadline := time.Now().Add(s.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("wssink: set deadline: %w", err)
	}
	return nil
}
