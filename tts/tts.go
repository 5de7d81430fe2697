// SPDX-License-Identifier: EPL-2.0

// Package tts produces speech audio for a line of text. Synthesizers return
// the raw container bytes (WAV, MP3, Ogg Vorbis, AIFF); normalising them is
// left to the formats and convert packages.
package tts

import (
	"context"
	"errors"
)

var (
	ErrEmptyText    = errors.New("tts: empty text")
	ErrEmptyCommand = errors.New("tts: command empty")
	ErrNoAudio      = errors.New("tts: synthesizer produced no audio")
)

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
