// SPDX-License-Identifier: EPL-2.0

package lipsync

import (
	"context"
	"errors"
	"testing"

	"github.com/ik5/lipsync/convert"
	"github.com/ik5/lipsync/formats/wav"
	"github.com/ik5/lipsync/internal/audiotest"
	"github.com/ik5/lipsync/sink"
)

func TestPrepare_StereoWAV(t *testing.T) {
	t.Parallel()

	// 1 second of 32 kHz stereo, left 1000 right 3000
	samples := make([]int16, 2*32000)
	for i := 0; i < len(samples); i += 2 {
		samples[i], samples[i+1] = 1000, 3000
	}

	buf, err := Prepare(audiotest.WAV(32000, 2, samples))
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if buf.SampleRate() != 16000 || buf.Len() != 32000 {
		t.Fatalf("buffer = %d Hz, %d bytes", buf.SampleRate(), buf.Len())
	}
	for i, s := range buf.Int16s() {
		if s != 2000 {
			t.Fatalf("sample %d = %d, want 2000", i, s)
		}
	}
}

func TestPrepare_Options(t *testing.T) {
	t.Parallel()

	buf, err := Prepare(audiotest.WAV(8000, 1, []int16{1, 2, 3, 4}), convert.WithTargetRate(8000), convert.WithMinBytes(0))
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 8 {
		t.Errorf("Len() = %d, want 8", buf.Len())
	}
}

func TestPrepare_Errors(t *testing.T) {
	t.Parallel()

	var fe *wav.FormatError
	if _, err := Prepare([]byte("hello")); !errors.As(err, &fe) || !errors.Is(err, wav.ErrTooShort) {
		t.Errorf("Prepare(text) error = %v, want wav.ErrTooShort", err)
	}
	if _, err := Prepare([]byte("this is plain text, not a riff container")); !errors.Is(err, wav.ErrMissingFmt) {
		t.Errorf("Prepare(long text) error = %v, want wav.ErrMissingFmt", err)
	}

	bad := audiotest.NewBuilder().Fmt(16000, 1, 24).Data(nil).Bytes()
	if _, err := Prepare(bad); !errors.Is(err, wav.ErrUnsupportedBitDepth) {
		t.Errorf("Prepare(24-bit) error = %v", err)
	}
}

func TestConvertAndStream(t *testing.T) {
	t.Parallel()

	rec := sink.NewRecorder()
	stats, err := ConvertAndStream(context.Background(), audiotest.WAV(16000, 1, []int16{7, 7, 7}), rec)
	if err != nil {
		t.Fatalf("ConvertAndStream() error = %v", err)
	}

	if stats.Frames != 100 || stats.Bytes != 32000 {
		t.Errorf("stats = %+v", stats)
	}
	got := rec.Bytes()
	if len(got) != 32000 || got[0] != 7 || got[6] != 0 {
		t.Errorf("sink bytes: len %d, head %v", len(got), got[:8])
	}
}

func TestConvertAndStream_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := sink.NewRecorder()
	_, err := ConvertAndStream(ctx, audiotest.WAV(16000, 1, nil), rec)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if rec.Stops() != 1 {
		t.Errorf("Stops() = %d, want 1", rec.Stops())
	}
}
