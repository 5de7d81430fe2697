// SPDX-License-Identifier: EPL-2.0

package tts

import (
	"bytes"
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ik5/lipsync/formats/wav"
)

const (
	mockPerRune   = 60 * time.Millisecond
	mockFrequency = 220.0
	mockAmplitude = 8000
)

type mockSynth struct {
	sampleRate int
	channels   int
}

// NewMock returns a Synthesizer that renders a plain tone, 60ms per rune of
// text, as a 16-bit WAV with the given layout.
func NewMock(sampleRate, channels int) Synthesizer {
	return &mockSynth{sampleRate: sampleRate, channels: channels}
}

func (m *mockSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	frames := int(int64(m.sampleRate) * int64(utf8.RuneCountInString(text)) * int64(mockPerRune) / int64(time.Second))
	samples := make([]int16, frames*m.channels)
	for i := range frames {
		v := int16(mockAmplitude * math.Sin(2*math.Pi*mockFrequency*float64(i)/float64(m.sampleRate)))
		for ch := range m.channels {
			samples[i*m.channels+ch] = v
		}
	}

	var out bytes.Buffer
	if err := wav.WriteWAV16(&out, m.sampleRate, m.channels, samples); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
