// SPDX-License-Identifier: EPL-2.0

// Package config loads the lipsync runtime settings from YAML with
// LIPSYNC_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ik5/lipsync/convert"
	"github.com/ik5/lipsync/llm"
	"github.com/ik5/lipsync/sink/natssink"
	"github.com/ik5/lipsync/stream"
)

type Config struct {
	ServiceName string          `yaml:"service_name"`
	LLM         LLMConfig       `yaml:"llm"`
	TTS         TTSConfig       `yaml:"tts"`
	Convert     ConvertConfig   `yaml:"convert"`
	Stream      StreamConfig    `yaml:"stream"`
	Sink        SinkConfig      `yaml:"sink"`
	History     HistoryConfig   `yaml:"history"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
}

type LLMConfig struct {
	Mode      string `yaml:"mode"` // mock, http
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

type TTSConfig struct {
	Mode       string `yaml:"mode"` // mock, exec
	Command    string `yaml:"command"`
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
}

type ConvertConfig struct {
	TargetRate int `yaml:"target_rate"`
	MinBytes   int `yaml:"min_bytes"`
}

type StreamConfig struct {
	FrameSize  int `yaml:"frame_size"`
	IntervalMS int `yaml:"interval_ms"`
}

type SinkConfig struct {
	Kind      string          `yaml:"kind"` // nats, ws, wav, none
	NATS      NATSConfig      `yaml:"nats"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	WAV       WAVConfig       `yaml:"wav"`
}

type NATSConfig struct {
	URL      string `yaml:"url"`
	Prefix   string `yaml:"prefix"`
	Embedded bool   `yaml:"embedded"`
	Port     int    `yaml:"port"`
}

type WebSocketConfig struct {
	URL string `yaml:"url"`
}

type WAVConfig struct {
	Dir string `yaml:"dir"`
}

type HistoryConfig struct {
	Path string `yaml:"path"`
}

type TelemetryConfig struct {
	LogLevel     string `yaml:"log_level"`
	MetricsBind  string `yaml:"metrics_bind"`
	Tracing      bool   `yaml:"tracing"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

func Default() Config {
	return Config{
		ServiceName: "lipsync",
		LLM: LLMConfig{
			Mode:      "mock",
			Endpoint:  llm.DefaultEndpoint,
			Model:     llm.DefaultModel,
			TimeoutMS: int(llm.DefaultTimeout / time.Millisecond),
		},
		TTS: TTSConfig{
			Mode:       "mock",
			SampleRate: 22050,
			Channels:   1,
		},
		Convert: ConvertConfig{
			TargetRate: convert.DefaultTargetRate,
			MinBytes:   convert.DefaultMinBytes,
		},
		Stream: StreamConfig{
			FrameSize:  stream.DefaultFrameSize,
			IntervalMS: int(stream.DefaultInterval / time.Millisecond),
		},
		Sink: SinkConfig{
			Kind: "none",
			NATS: NATSConfig{
				URL:    "nats://localhost:4222",
				Prefix: natssink.DefaultPrefix,
				Port:   4222,
			},
			WebSocket: WebSocketConfig{URL: "ws://localhost:8927/avatar"},
			WAV:       WAVConfig{Dir: "./recordings"},
		},
		History: HistoryConfig{Path: ""},
		Telemetry: TelemetryConfig{
			LogLevel:     "info",
			OTLPInsecure: true,
		},
	}
}

// Load reads path (when not empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c StreamConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.ServiceName, "LIPSYNC_SERVICE_NAME")
	overrideString(&cfg.LLM.Mode, "LIPSYNC_LLM_MODE")
	overrideString(&cfg.LLM.Endpoint, "LIPSYNC_LLM_ENDPOINT")
	overrideString(&cfg.LLM.Model, "LIPSYNC_LLM_MODEL")
	overrideString(&cfg.LLM.APIKey, "LIPSYNC_LLM_API_KEY")
	overrideInt(&cfg.LLM.TimeoutMS, "LIPSYNC_LLM_TIMEOUT_MS")
	overrideString(&cfg.TTS.Mode, "LIPSYNC_TTS_MODE")
	overrideString(&cfg.TTS.Command, "LIPSYNC_TTS_COMMAND")
	overrideInt(&cfg.TTS.SampleRate, "LIPSYNC_TTS_SAMPLE_RATE")
	overrideInt(&cfg.TTS.Channels, "LIPSYNC_TTS_CHANNELS")
	overrideInt(&cfg.Convert.TargetRate, "LIPSYNC_CONVERT_TARGET_RATE")
	overrideInt(&cfg.Convert.MinBytes, "LIPSYNC_CONVERT_MIN_BYTES")
	overrideInt(&cfg.Stream.FrameSize, "LIPSYNC_STREAM_FRAME_SIZE")
	overrideInt(&cfg.Stream.IntervalMS, "LIPSYNC_STREAM_INTERVAL_MS")
	overrideString(&cfg.Sink.Kind, "LIPSYNC_SINK_KIND")
	overrideString(&cfg.Sink.NATS.URL, "LIPSYNC_SINK_NATS_URL")
	overrideString(&cfg.Sink.NATS.Prefix, "LIPSYNC_SINK_NATS_PREFIX")
	overrideBool(&cfg.Sink.NATS.Embedded, "LIPSYNC_SINK_NATS_EMBEDDED")
	overrideInt(&cfg.Sink.NATS.Port, "LIPSYNC_SINK_NATS_PORT")
	overrideString(&cfg.Sink.WebSocket.URL, "LIPSYNC_SINK_WS_URL")
	overrideString(&cfg.Sink.WAV.Dir, "LIPSYNC_SINK_WAV_DIR")
	overrideString(&cfg.History.Path, "LIPSYNC_HISTORY_PATH")
	overrideString(&cfg.Telemetry.LogLevel, "LIPSYNC_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.MetricsBind, "LIPSYNC_TELEMETRY_METRICS_BIND")
	overrideBool(&cfg.Telemetry.Tracing, "LIPSYNC_TELEMETRY_TRACING")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "LIPSYNC_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "LIPSYNC_TELEMETRY_OTLP_INSECURE")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

// Validate reports the first invalid field of cfg. Callers that change a
// loaded Config must validate it again.
func Validate(cfg Config) error {
	if cfg.ServiceName == "" {
		return errors.New("service_name must not be empty")
	}

	switch cfg.LLM.Mode {
	case "mock":
	case "http":
		if cfg.LLM.Endpoint == "" {
			return errors.New("llm.endpoint must be set when mode=http")
		}
	default:
		return errors.New("llm.mode must be one of mock|http")
	}
	if cfg.LLM.TimeoutMS <= 0 {
		return errors.New("llm.timeout_ms must be positive")
	}

	switch cfg.TTS.Mode {
	case "mock":
	case "exec":
		if cfg.TTS.Command == "" {
			return errors.New("tts.command must be set when mode=exec")
		}
	default:
		return errors.New("tts.mode must be one of mock|exec")
	}
	if cfg.TTS.SampleRate <= 0 {
		return errors.New("tts.sample_rate must be positive")
	}
	if cfg.TTS.Channels <= 0 {
		return errors.New("tts.channels must be positive")
	}

	if cfg.Convert.TargetRate <= 0 {
		return errors.New("convert.target_rate must be positive")
	}
	if cfg.Convert.MinBytes < 0 {
		return errors.New("convert.min_bytes must be >= 0")
	}

	if cfg.Stream.FrameSize <= 0 || cfg.Stream.FrameSize%2 != 0 {
		return errors.New("stream.frame_size must be a positive even number")
	}
	if cfg.Stream.IntervalMS < 0 {
		return errors.New("stream.interval_ms must be >= 0")
	}

	switch cfg.Sink.Kind {
	case "none":
	case "nats":
		if cfg.Sink.NATS.Embedded {
			if cfg.Sink.NATS.Port < -1 || cfg.Sink.NATS.Port > 65535 {
				return errors.New("sink.nats.port must be between -1 and 65535 when embedded")
			}
		} else if cfg.Sink.NATS.URL == "" {
			return errors.New("sink.nats.url must not be empty when embedded mode is disabled")
		}
		if cfg.Sink.NATS.Prefix == "" {
			return errors.New("sink.nats.prefix must not be empty")
		}
	case "ws":
		if cfg.Sink.WebSocket.URL == "" {
			return errors.New("sink.websocket.url must be set when kind=ws")
		}
	case "wav":
		if cfg.Sink.WAV.Dir == "" {
			return errors.New("sink.wav.dir must be set when kind=wav")
		}
	default:
		return errors.New("sink.kind must be one of nats|ws|wav|none")
	}

	switch strings.ToLower(cfg.Telemetry.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("telemetry.log_level must be one of debug|info|warn|error")
	}

	return nil
}
