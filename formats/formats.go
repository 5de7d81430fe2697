// SPDX-License-Identifier: EPL-2.0

// Package formats recognizes speech synthesizer output and turns whatever it
// finds into a 16-bit PCM WAV container the converter understands.
package formats

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ik5/lipsync/audio"
	"github.com/ik5/lipsync/formats/aiff"
	"github.com/ik5/lipsync/formats/mp3"
	"github.com/ik5/lipsync/formats/vorbis"
	"github.com/ik5/lipsync/formats/wav"
)

type Format string

const (
	Unknown Format = ""
	WAV     Format = "wav"
	AIFF    Format = "aiff"
	Vorbis  Format = "ogg"
	MP3     Format = "mp3"
)

// ErrUnknownFormat is returned when a recognised container has no decoder
// in the registry.
var ErrUnknownFormat = errors.New("formats: unrecognized audio container")

const readBufSize = 4096

// Detect sniffs the container type from the leading bytes.
func Detect(data []byte) Format {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return WAV
	case len(data) >= 12 && string(data[0:4]) == "FORM" && (string(data[8:12]) == "AIFF" || string(data[8:12]) == "AIFC"):
		return AIFF
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return Vorbis
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return MP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return MP3
	}
	return Unknown
}

// NewRegistry returns a registry holding every compressed format decoder.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(string(MP3), mp3.Decoder{})
	r.Register(string(Vorbis), vorbis.Decoder{})
	r.Register(string(AIFF), aiff.Decoder{})
	return r
}

var defaultRegistry = NewRegistry()

// ToWAV returns data unchanged when it already is a WAV container or matches
// no known magic, leaving the WAV parser to report what is wrong with it.
// Other formats are decoded and re-wrapped as 16-bit PCM WAV with their
// original rate and channel count.
func ToWAV(data []byte) ([]byte, error) {
	return ToWAVWith(defaultRegistry, data)
}

// ToWAVWith is ToWAV with a caller supplied decoder registry.
func ToWAVWith(reg *audio.Registry, data []byte) ([]byte, error) {
	f := Detect(data)
	if f == WAV || f == Unknown {
		return data, nil
	}

	dec, ok := reg.Get(string(f))
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for %s", ErrUnknownFormat, f)
	}

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}
	defer src.Close()

	samples, err := audio.ReadAll(src, readBufSize)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}

	out := new(bytes.Buffer)
	out.Grow(44 + 2*len(samples))
	if err := wav.WriteWAV16(out, src.SampleRate(), src.Channels(), samples); err != nil {
		return nil, fmt.Errorf("wrap %s as wav: %w", f, err)
	}
	return out.Bytes(), nil
}
