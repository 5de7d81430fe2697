// SPDX-License-Identifier: EPL-2.0

// Package pipeline turns a prompt or a line of text into PCM frames flowing
// to an avatar renderer: LLM reply, speech synthesis, format normalisation,
// conversion and paced streaming.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ik5/lipsync/audio"
	"github.com/ik5/lipsync/convert"
	"github.com/ik5/lipsync/formats"
	"github.com/ik5/lipsync/internal/history"
	"github.com/ik5/lipsync/internal/telemetry"
	"github.com/ik5/lipsync/llm"
	"github.com/ik5/lipsync/stream"
	"github.com/ik5/lipsync/tts"
)

const tracerName = "github.com/ik5/lipsync/internal/pipeline"

var (
	ErrEmptyText = errors.New("pipeline: nothing to speak")
	ErrNoLLM     = errors.New("pipeline: no language model configured")
	ErrNoTTS     = errors.New("pipeline: no synthesizer configured")
)

// Speaker plays one utterance at a time. Starting a new one cancels the
// utterance still streaming and waits for its sink to be stopped.
type Speaker struct {
	llm       llm.Client
	synth     tts.Synthesizer
	converter *convert.Converter
	streamer  *stream.Streamer
	decoders  *audio.Registry
	history   *history.Store
	metrics   *telemetry.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger

	mu      sync.Mutex
	current *Utterance
}

type Option func(*Speaker)

func WithLLM(c llm.Client) Option { return func(s *Speaker) { s.llm = c } }

func WithConverter(c *convert.Converter) Option {
	return func(s *Speaker) {
		if c != nil {
			s.converter = c
		}
	}
}

func WithStreamer(st *stream.Streamer) Option {
	return func(s *Speaker) {
		if st != nil {
			s.streamer = st
		}
	}
}

// WithDecoders replaces the registry used for non-WAV synthesizer output.
func WithDecoders(r *audio.Registry) Option {
	return func(s *Speaker) {
		if r != nil {
			s.decoders = r
		}
	}
}

func WithHistory(h *history.Store) Option { return func(s *Speaker) { s.history = h } }

func WithMetrics(m *telemetry.Metrics) Option { return func(s *Speaker) { s.metrics = m } }

func WithTracer(t trace.Tracer) Option {
	return func(s *Speaker) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Speaker) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(synth tts.Synthesizer, opts ...Option) (*Speaker, error) {
	if synth == nil {
		return nil, ErrNoTTS
	}

	s := &Speaker{
		synth:     synth,
		converter: convert.New(),
		streamer:  stream.New(),
		decoders:  formats.NewRegistry(),
		tracer:    otel.Tracer(tracerName),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "speaker"))
	return s, nil
}

// Reply asks the language model for an answer to prompt and speaks it.
func (s *Speaker) Reply(ctx context.Context, prompt string, sink stream.Sink) (*Utterance, error) {
	if s.llm == nil {
		return nil, ErrNoLLM
	}

	ctx, span := s.tracer.Start(ctx, "lipsync.reply")
	defer span.End()

	started := time.Now()
	text, err := s.llm.Chat(ctx, prompt)
	s.observe(telemetry.StageLLM, started, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("pipeline: chat: %w", err)
	}
	s.logger.Debug("llm replied", slog.Int("chars", len(text)), slog.Duration("elapsed", time.Since(started)))

	return s.Speak(ctx, text, sink)
}

// Speak synthesizes text and starts streaming it to sink. It returns once
// streaming has begun; ctx bounds the whole utterance, streaming included.
func (s *Speaker) Speak(ctx context.Context, text string, sink stream.Sink) (*Utterance, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	ctx, span := s.tracer.Start(ctx, "lipsync.utterance",
		trace.WithAttributes(attribute.Int("text.chars", len(text))),
	)

	buf, err := s.prepare(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("audio.bytes", buf.Len()),
		attribute.Int64("audio.duration_ms", buf.Duration().Milliseconds()),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev := s.current; prev != nil {
		prev.Cancel()
		<-prev.session.Done()
	}

	u := &Utterance{
		Text:    text,
		Audio:   buf,
		session: s.streamer.Start(ctx, buf, sink),
		done:    make(chan struct{}),
	}
	u.ID = u.session.ID
	s.current = u
	span.SetAttributes(attribute.String("session.id", u.ID))

	go s.finish(ctx, span, u)

	s.logger.Info("utterance started",
		slog.String("session", u.ID),
		slog.Duration("audio", buf.Duration()),
	)
	return u, nil
}

// Current returns the utterance being streamed, or nil.
func (s *Speaker) Current() *Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Stop cancels the current utterance, if any, and waits for it to end.
func (s *Speaker) Stop() {
	if u := s.Current(); u != nil {
		u.Cancel()
		_, _ = u.Wait()
	}
}

func (s *Speaker) prepare(ctx context.Context, text string) (audio.Buffer, error) {
	started := time.Now()
	raw, err := s.synth.Synthesize(ctx, text)
	s.observe(telemetry.StageTTS, started, err)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("pipeline: synthesize: %w", err)
	}

	started = time.Now()
	buf, err := s.convert(raw)
	s.observe(telemetry.StageConvert, started, err)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("pipeline: convert: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ObserveAudio(buf.Duration())
	}
	return buf, nil
}

func (s *Speaker) convert(raw []byte) (audio.Buffer, error) {
	data, err := formats.ToWAVWith(s.decoders, raw)
	if err != nil {
		return audio.Buffer{}, err
	}
	return s.converter.Convert(data)
}

func (s *Speaker) finish(ctx context.Context, span trace.Span, u *Utterance) {
	defer close(u.done)
	defer span.End()

	u.stats, u.err = u.session.Wait()
	status := stream.Status(u.err)

	span.SetAttributes(
		attribute.String("stream.status", status),
		attribute.Int("stream.frames", u.stats.Frames),
	)
	if status == stream.StatusFailed {
		span.RecordError(u.err)
		span.SetStatus(codes.Error, u.err.Error())
	}

	s.mu.Lock()
	if s.current == u {
		s.current = nil
	}
	s.mu.Unlock()

	if s.history == nil {
		return
	}

	entry := history.Entry{
		ID:            u.ID,
		Text:          u.Text,
		Status:        status,
		Frames:        u.stats.Frames,
		Bytes:         u.stats.Bytes,
		AudioDuration: u.Audio.Duration(),
		Started:       u.stats.Started,
		Finished:      u.stats.Finished,
	}
	if u.err != nil {
		entry.Error = u.err.Error()
	}
	if err := s.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("history record failed",
			slog.String("session", u.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Speaker) observe(stage telemetry.Stage, started time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveStage(stage, time.Since(started), err)
	}
}
