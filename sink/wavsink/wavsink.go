// SPDX-License-Identifier: EPL-2.0

// Package wavsink taps a frame stream into WAV files, one file per stream.
package wavsink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gowav "github.com/go-audio/wav"
	"github.com/google/uuid"

	"github.com/ik5/lipsync/formats/wav"
)

var ErrNotStarted = errors.New("wavsink: stream not started")

// Sink writes each stream to <dir>/<session>.wav. It is not safe for
// concurrent streams.
type Sink struct {
	dir        string
	sampleRate int

	path string
	f    *os.File
	enc  *gowav.Encoder
}

func New(dir string, sampleRate int) (*Sink, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wavsink: sample rate %d: %w", sampleRate, wav.ErrInvalidField)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("wavsink: %w", err)
	}
	return &Sink{dir: dir, sampleRate: sampleRate}, nil
}

// Path of the file for the current or last stream.
func (s *Sink) Path() string { return s.path }

func (s *Sink) OnStart(context.Context) error {
	s.path = filepath.Join(s.dir, uuid.NewString()+".wav")

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("wavsink: %w", err)
	}
	s.f = f
	s.enc = gowav.NewEncoder(f, s.sampleRate, 16, 1, wav.FormatPCM)
	return nil
}

func (s *Sink) OnFrame(_ context.Context, frame []byte) error {
	if s.enc == nil {
		return ErrNotStarted
	}
	if err := s.enc.Write(wav.IntBuffer(s.sampleRate, frame)); err != nil {
		return fmt.Errorf("wavsink: write %s: %w", s.path, err)
	}
	return nil
}

func (s *Sink) OnStop(context.Context) error {
	if s.enc == nil {
		return ErrNotStarted
	}

	encErr := s.enc.Close()
	closeErr := s.f.Close()
	s.enc, s.f = nil, nil

	if err := errors.Join(encErr, closeErr); err != nil {
		return fmt.Errorf("wavsink: finalize %s: %w", s.path, err)
	}
	return nil
}
