// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ik5/lipsync/convert"
	"github.com/ik5/lipsync/internal/config"
	"github.com/ik5/lipsync/internal/history"
	"github.com/ik5/lipsync/internal/natsserver"
	"github.com/ik5/lipsync/internal/pipeline"
	"github.com/ik5/lipsync/internal/telemetry"
	"github.com/ik5/lipsync/llm"
	"github.com/ik5/lipsync/sink"
	"github.com/ik5/lipsync/sink/natssink"
	"github.com/ik5/lipsync/sink/wavsink"
	"github.com/ik5/lipsync/sink/wssink"
	"github.com/ik5/lipsync/stream"
	"github.com/ik5/lipsync/tts"
)

const shutdownTimeout = 5 * time.Second

func runSpeak(ctx context.Context, args []string) error {
	fs := newFlagSet("speak")
	var (
		configPath = fs.String("config", "", "path to configuration file")
		prompt     = fs.String("prompt", "", "ask the language model and speak its reply")
		text       = fs.String("text", "", "speak this text as is")
		sinkKind   = fs.String("sink", "", "override sink kind: nats, ws, wav or none")
		record     = fs.String("record", "", "also record streamed frames as WAV files in this directory")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*prompt == "") == (*text == "") {
		return errors.New("speak: exactly one of -prompt or -text is required")
	}

	cfg, err := loadConfig(*configPath, *sinkKind)
	if err != nil {
		return err
	}

	logger := newLogger(os.Stdout, cfg.Telemetry.LogLevel).With(slog.String("service", cfg.ServiceName))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)
	if cfg.Telemetry.MetricsBind != "" {
		srv := serveMetrics(cfg.Telemetry.MetricsBind, reg, logger)
		defer shutdownServer(srv, logger)
	}

	if cfg.Telemetry.Tracing {
		tp, err := telemetry.SetupTracing(ctx, telemetry.TracingConfig{
			ServiceName:  cfg.ServiceName,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			OTLPInsecure: cfg.Telemetry.OTLPInsecure,
			Writer:       os.Stderr,
		}, logger)
		if err != nil {
			return fmt.Errorf("setup tracing: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(sctx); err != nil {
				logger.Warn("tracer shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	store, err := history.Open(ctx, cfg.History.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	out, closeSink, err := buildSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	if *record != "" {
		tap, err := wavsink.New(*record, cfg.Convert.TargetRate)
		if err != nil {
			return err
		}
		out = sink.Multi(out, tap)
		defer func() { logger.Info("recorded", slog.String("path", tap.Path())) }()
	}

	synth, err := buildSynth(cfg.TTS)
	if err != nil {
		return err
	}
	chat, err := buildLLM(cfg.LLM)
	if err != nil {
		return err
	}

	speaker, err := pipeline.New(synth,
		pipeline.WithLLM(chat),
		pipeline.WithConverter(convert.New(
			convert.WithTargetRate(cfg.Convert.TargetRate),
			convert.WithMinBytes(cfg.Convert.MinBytes),
		)),
		pipeline.WithStreamer(stream.New(
			stream.WithFrameSize(cfg.Stream.FrameSize),
			stream.WithInterval(cfg.Stream.Interval()),
			stream.WithMetrics(metrics),
			stream.WithLogger(logger.With(slog.String("component", "streamer"))),
		)),
		pipeline.WithHistory(store),
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	var u *pipeline.Utterance
	if *prompt != "" {
		u, err = speaker.Reply(ctx, *prompt, out)
	} else {
		u, err = speaker.Speak(ctx, *text, out)
	}
	if err != nil {
		return err
	}

	stats, err := u.Wait()
	logger.Info("utterance finished",
		slog.String("session", u.ID),
		slog.String("text", u.Text),
		slog.String("status", stream.Status(err)),
		slog.Int("frames", stats.Frames),
		slog.Duration("elapsed", stats.Elapsed()),
	)
	if stream.Status(err) == stream.StatusCancelled {
		return nil
	}
	return err
}

// loadConfig loads path and applies the -sink override, validating the
// result again so an override is held to the same rules as the file.
func loadConfig(path, sinkKind string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if sinkKind == "" {
		return cfg, nil
	}

	cfg.Sink.Kind = sinkKind
	if err := config.Validate(cfg); err != nil {
		return cfg, fmt.Errorf("-sink %s: %w", sinkKind, err)
	}
	return cfg, nil
}

func buildLLM(cfg config.LLMConfig) (llm.Client, error) {
	if cfg.Mode == "http" {
		return llm.NewHTTPClient(cfg.Endpoint,
			llm.WithModel(cfg.Model),
			llm.WithAPIKey(cfg.APIKey),
			llm.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		)
	}
	return llm.NewMock(), nil
}

func buildSynth(cfg config.TTSConfig) (tts.Synthesizer, error) {
	if cfg.Mode == "exec" {
		return tts.NewExecSynth(cfg.Command)
	}
	return tts.NewMock(cfg.SampleRate, cfg.Channels), nil
}

// buildSink returns the configured sink and a func releasing whatever it
// holds open.
func buildSink(ctx context.Context, cfg config.Config, logger *slog.Logger) (stream.Sink, func(), error) {
	nop := func() {}
	rate := cfg.Convert.TargetRate

	switch cfg.Sink.Kind {
	case "nats":
		url := cfg.Sink.NATS.URL
		var embedded *natsserver.Server
		if cfg.Sink.NATS.Embedded {
			var err error
			embedded, err = natsserver.Start("127.0.0.1", cfg.Sink.NATS.Port, logger)
			if err != nil {
				return nil, nop, err
			}
			url = embedded.ClientURL()
		}

		nc, err := nats.Connect(url, nats.Name(cfg.ServiceName))
		if err != nil {
			embedded.Shutdown()
			return nil, nop, fmt.Errorf("connect nats %s: %w", url, err)
		}
		s, err := natssink.New(nc,
			natssink.WithPrefix(cfg.Sink.NATS.Prefix),
			natssink.WithSampleRate(rate),
			natssink.WithLogger(logger),
		)
		if err != nil {
			nc.Close()
			embedded.Shutdown()
			return nil, nop, err
		}
		return s, func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("nats drain failed", slog.String("error", err.Error()))
			}
			embedded.Shutdown()
		}, nil

	case "ws":
		s, err := wssink.Dial(ctx, cfg.Sink.WebSocket.URL, nil,
			wssink.WithSampleRate(rate),
			wssink.WithLogger(logger),
		)
		if err != nil {
			return nil, nop, err
		}
		return s, func() { _ = s.Close() }, nil

	case "wav":
		s, err := wavsink.New(cfg.Sink.WAV.Dir, rate)
		if err != nil {
			return nil, nop, err
		}
		return s, nop, nil

	case "none":
		return sink.Discard{}, nop, nil

	default:
		return nil, nop, fmt.Errorf("unknown sink kind %q", cfg.Sink.Kind)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()
	return srv
}

func shutdownServer(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics shutdown failed", slog.String("error", err.Error()))
	}
}
