// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Convert.TargetRate != 16000 || cfg.Convert.MinBytes != 32000 {
		t.Fatalf("convert defaults = %+v", cfg.Convert)
	}
	if cfg.Stream.FrameSize != 320 || cfg.Stream.Interval() != 10*time.Millisecond {
		t.Fatalf("stream defaults = %+v", cfg.Stream)
	}
	if cfg.Sink.Kind != "none" || cfg.LLM.Mode != "mock" || cfg.TTS.Mode != "mock" {
		t.Fatalf("unexpected default modes: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lipsync.yaml")
	yml := `
llm:
  mode: http
  endpoint: http://localhost:8080/v1/chat/completions
  model: tiny
tts:
  mode: exec
  command: piper --output_file -
stream:
  frame_size: 640
  interval_ms: 20
sink:
  kind: nats
  nats:
    embedded: true
    port: -1
history:
  path: ./history.db
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Mode != "http" || cfg.LLM.Model != "tiny" {
		t.Fatalf("llm = %+v", cfg.LLM)
	}
	if cfg.TTS.Command != "piper --output_file -" {
		t.Fatalf("tts command = %q", cfg.TTS.Command)
	}
	if cfg.Stream.FrameSize != 640 || cfg.Stream.Interval() != 20*time.Millisecond {
		t.Fatalf("stream = %+v", cfg.Stream)
	}
	if !cfg.Sink.NATS.Embedded || cfg.Sink.NATS.Port != -1 || cfg.Sink.NATS.Prefix != "lipsync.audio" {
		t.Fatalf("nats = %+v", cfg.Sink.NATS)
	}
	if cfg.History.Path != "./history.db" {
		t.Fatalf("history = %+v", cfg.History)
	}
	// untouched sections keep their defaults
	if cfg.Convert.TargetRate != 16000 {
		t.Fatalf("convert = %+v", cfg.Convert)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("stream: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LIPSYNC_LLM_MODE", "http")
	t.Setenv("LIPSYNC_LLM_API_KEY", "secret")
	t.Setenv("LIPSYNC_CONVERT_TARGET_RATE", "24000")
	t.Setenv("LIPSYNC_STREAM_INTERVAL_MS", "0")
	t.Setenv("LIPSYNC_SINK_KIND", "ws")
	t.Setenv("LIPSYNC_SINK_WS_URL", "ws://renderer:9000/pcm")
	t.Setenv("LIPSYNC_TELEMETRY_TRACING", "true")
	t.Setenv("LIPSYNC_STREAM_FRAME_SIZE", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Mode != "http" || cfg.LLM.APIKey != "secret" {
		t.Fatalf("llm = %+v", cfg.LLM)
	}
	if cfg.Convert.TargetRate != 24000 {
		t.Fatalf("expected target rate override, got %d", cfg.Convert.TargetRate)
	}
	if cfg.Stream.Interval() != 0 {
		t.Fatalf("expected pacing disabled, got %v", cfg.Stream.Interval())
	}
	if cfg.Stream.FrameSize != 320 {
		t.Fatalf("invalid int override must be ignored, got %d", cfg.Stream.FrameSize)
	}
	if cfg.Sink.Kind != "ws" || cfg.Sink.WebSocket.URL != "ws://renderer:9000/pcm" {
		t.Fatalf("sink = %+v", cfg.Sink)
	}
	if !cfg.Telemetry.Tracing {
		t.Fatal("expected tracing override true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"llm mode", func(c *Config) { c.LLM.Mode = "ollama" }, "llm.mode"},
		{"llm endpoint", func(c *Config) { c.LLM.Mode = "http"; c.LLM.Endpoint = "" }, "llm.endpoint"},
		{"tts command", func(c *Config) { c.TTS.Mode = "exec" }, "tts.command"},
		{"tts rate", func(c *Config) { c.TTS.SampleRate = 0 }, "tts.sample_rate"},
		{"target rate", func(c *Config) { c.Convert.TargetRate = -1 }, "convert.target_rate"},
		{"odd frame", func(c *Config) { c.Stream.FrameSize = 321 }, "stream.frame_size"},
		{"negative interval", func(c *Config) { c.Stream.IntervalMS = -5 }, "stream.interval_ms"},
		{"sink kind", func(c *Config) { c.Sink.Kind = "speaker" }, "sink.kind"},
		{"nats url", func(c *Config) { c.Sink.Kind = "nats"; c.Sink.NATS.URL = "" }, "sink.nats.url"},
		{"ws url", func(c *Config) { c.Sink.Kind = "ws"; c.Sink.WebSocket.URL = "" }, "sink.websocket.url"},
		{"wav dir", func(c *Config) { c.Sink.Kind = "wav"; c.Sink.WAV.Dir = "" }, "sink.wav.dir"},
		{"log level", func(c *Config) { c.Telemetry.LogLevel = "loud" }, "telemetry.log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}

	if err := Validate(Default()); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
