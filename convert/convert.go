// SPDX-License-Identifier: EPL-2.0

package convert

import (
	"fmt"

	"github.com/ik5/lipsync/audio"
	"github.com/ik5/lipsync/formats/wav"
)

const (
	// DefaultTargetRate is the renderer's input rate.
	DefaultTargetRate = 16000
	// DefaultMinBytes is one second of 16 kHz mono 16-bit audio.
	DefaultMinBytes = 32000
)

// Converter turns a WAV container into mono PCM at TargetRate, at least
// MinBytes long. The zero value is not usable; use New.
type Converter struct {
	TargetRate int
	MinBytes   int
}

type Option func(*Converter)

// WithTargetRate overrides the output sample rate.
func WithTargetRate(rate int) Option {
	return func(c *Converter) { c.TargetRate = rate }
}

// WithMinBytes overrides the minimum output length. Zero disables padding.
func WithMinBytes(n int) Option {
	return func(c *Converter) { c.MinBytes = n }
}

func New(opts ...Option) *Converter {
	c := &Converter{
		TargetRate: DefaultTargetRate,
		MinBytes:   DefaultMinBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultConverter = New()

// Convert runs the default converter (16 kHz, 32000 bytes minimum).
func Convert(data []byte) (audio.Buffer, error) {
	return defaultConverter.Convert(data)
}

// Convert parses data, downmixes stereo, resamples to TargetRate and pads
// with silence up to MinBytes. The returned buffer never shares memory with
// data. Container problems are reported as *wav.FormatError.
func (c *Converter) Convert(data []byte) (audio.Buffer, error) {
	if c.TargetRate <= 0 {
		return audio.Buffer{}, fmt.Errorf("convert: target rate %d: %w", c.TargetRate, audio.ErrInvalidRate)
	}

	d, err := wav.ParseDescriptor(data)
	if err != nil {
		return audio.Buffer{}, err
	}

	var pcm []byte
	if d.Channels == 2 {
		pcm = audio.DownmixStereo16(d.Data)
	} else {
		pcm = make([]byte, len(d.Data)&^1)
		copy(pcm, d.Data)
	}

	if d.SampleRate != c.TargetRate {
		pcm = audio.Resample16(pcm, d.SampleRate, c.TargetRate)
	}

	pcm = audio.PadToMinimum(pcm, c.MinBytes&^1)

	return audio.NewBuffer(pcm, c.TargetRate)
}
