// SPDX-License-Identifier: EPL-2.0

// Package telemetry holds the Prometheus metrics and OpenTelemetry tracing
// used by the lipsync runtime.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage names an utterance processing step.
type Stage string

const (
	StageLLM     Stage = "llm"
	StageTTS     Stage = "tts"
	StageConvert Stage = "convert"
)

// Metrics contains all Prometheus metrics for the lipsync runtime.
type Metrics struct {
	// Stream metrics
	StreamsStarted  prometheus.Counter
	ActiveStreams   prometheus.Gauge
	StreamsFinished *prometheus.CounterVec
	StreamDuration  prometheus.Histogram
	FramesSent      prometheus.Counter
	BytesSent       prometheus.Counter

	// Utterance metrics
	StageDuration *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec
	AudioSeconds  prometheus.Histogram
}

// NewMetrics creates all metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		StreamsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "lipsync_streams_started_total",
			Help: "Total number of PCM streams started",
		}),
		ActiveStreams: f.NewGauge(prometheus.GaugeOpts{
			Name: "lipsync_active_streams",
			Help: "Current number of PCM streams in flight",
		}),
		StreamsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lipsync_streams_finished_total",
			Help: "Total number of PCM streams finished, by status",
		}, []string{"status"}),
		StreamDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lipsync_stream_duration_seconds",
			Help:    "Wall clock duration of PCM streams",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2 minutes
		}),
		FramesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "lipsync_frames_sent_total",
			Help: "Total number of PCM frames delivered to sinks",
		}),
		BytesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "lipsync_bytes_sent_total",
			Help: "Total number of PCM bytes delivered to sinks",
		}),

		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lipsync_stage_duration_seconds",
			Help:    "Time spent in each utterance stage",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"stage"}),
		StageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lipsync_stage_errors_total",
			Help: "Total number of failed utterance stages",
		}, []string{"stage"}),
		AudioSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lipsync_audio_duration_seconds",
			Help:    "Duration of the converted speech audio",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s to ~1 minute
		}),
	}
}

func (m *Metrics) StreamStarted() {
	m.StreamsStarted.Inc()
	m.ActiveStreams.Inc()
}

func (m *Metrics) FrameSent(n int) {
	m.FramesSent.Inc()
	m.BytesSent.Add(float64(n))
}

func (m *Metrics) StreamFinished(status string, elapsed time.Duration) {
	m.ActiveStreams.Dec()
	m.StreamsFinished.WithLabelValues(status).Inc()
	m.StreamDuration.Observe(elapsed.Seconds())
}

// ObserveStage records how long a stage took and whether it failed.
func (m *Metrics) ObserveStage(stage Stage, elapsed time.Duration, err error) {
	m.StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
	if err != nil {
		m.StageErrors.WithLabelValues(string(stage)).Inc()
	}
}

func (m *Metrics) ObserveAudio(d time.Duration) {
	m.AudioSeconds.Observe(d.Seconds())
}
