// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ik5/lipsync/internal/audiotest"
)

func TestParseDescriptor_Mono(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 100, -100, 32767, -32768}
	d, err := ParseDescriptor(audiotest.WAV(16000, 1, samples))
	if err != nil {
		t.Fatalf("ParseDescriptor() error = %v", err)
	}

	if d.SampleRate != 16000 || d.Channels != 1 || d.BitsPerSample != 16 {
		t.Errorf("descriptor = %+v, want 16000/1/16", d)
	}
	if d.BlockAlign() != 2 {
		t.Errorf("BlockAlign() = %d, want 2", d.BlockAlign())
	}
	if !bytes.Equal(d.Data, audiotest.Int16Bytes(samples)) {
		t.Errorf("Data = %v, want sample bytes", d.Data)
	}
}

func TestParseDescriptor_StereoWithExtraChunks(t *testing.T) {
	t.Parallel()

	data := audiotest.NewBuilder().
		Raw("JUNK", 28, make([]byte, 28)).
		Fmt(44100, 2, 16).
		Raw("LIST", 4, []byte("INFO")).
		Data([]int16{1, 2, 3, 4}).
		Bytes()

	d, err := ParseDescriptor(data)
	if err != nil {
		t.Fatalf("ParseDescriptor() error = %v", err)
	}
	if d.SampleRate != 44100 || d.Channels != 2 {
		t.Errorf("descriptor = %+v, want 44100 stereo", d)
	}
	if len(d.Data) != 8 {
		t.Errorf("len(Data) = %d, want 8", len(d.Data))
	}
}

func TestParseDescriptor_FirstDataChunkWins(t *testing.T) {
	t.Parallel()

	data := audiotest.NewBuilder().
		Fmt(16000, 1, 16).
		Data([]int16{1}).
		Data([]int16{2, 3}).
		Bytes()

	d, err := ParseDescriptor(data)
	if err != nil {
		t.Fatalf("ParseDescriptor() error = %v", err)
	}
	if got := audiotest.BytesInt16(d.Data); len(got) != 1 || got[0] != 1 {
		t.Errorf("Data samples = %v, want [1]", got)
	}
}

func TestParseDescriptor_TruncatedDataIsClipped(t *testing.T) {
	t.Parallel()

	data := audiotest.NewBuilder().
		Fmt(16000, 1, 16).
		Raw("data", 4000, audiotest.Int16Bytes([]int16{5, 6, 7})).
		Bytes()

	d, err := ParseDescriptor(data)
	if err != nil {
		t.Fatalf("ParseDescriptor() error = %v, want clipping instead of failure", err)
	}
	if len(d.Data) != 6 {
		t.Errorf("len(Data) = %d, want 6", len(d.Data))
	}
}

func TestParseDescriptor_ExtensibleFormat(t *testing.T) {
	t.Parallel()

	fmtPayload := make([]byte, 40)
	copy(fmtPayload, audiotest.NewBuilder().FmtTag(FormatExtensible, 22050, 1, 16).Bytes()[20:36])

	data := audiotest.NewBuilder().
		Raw("fmt ", 40, fmtPayload).
		Data([]int16{1, 2}).
		Bytes()

	d, err := ParseDescriptor(data)
	if err != nil {
		t.Fatalf("ParseDescriptor() error = %v", err)
	}
	if d.AudioFormat != FormatExtensible || d.SampleRate != 22050 {
		t.Errorf("descriptor = %+v, want extensible 22050", d)
	}
}

func TestParseDescriptor_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTooShort},
		{"shorter than header", []byte("RIFF\x00\x00"), ErrTooShort},
		{"header only", []byte("RIFF\x04\x00\x00\x00WAVE"), ErrMissingFmt},
		{"no fmt", audiotest.NewBuilder().Data([]int16{1, 2}).Bytes(), ErrMissingFmt},
		{"fmt after data", audiotest.NewBuilder().Data([]int16{1}).Fmt(16000, 1, 16).Bytes(), ErrMissingFmt},
		{"no data", audiotest.NewBuilder().Fmt(16000, 1, 16).Bytes(), ErrMissingData},
		{"fmt too small", audiotest.NewBuilder().Raw("fmt ", 8, make([]byte, 8)).Data(nil).Bytes(), ErrInvalidField},
		{"zero rate", audiotest.NewBuilder().Fmt(0, 1, 16).Data(nil).Bytes(), ErrInvalidField},
		{"negative rate", audiotest.NewBuilder().Fmt(-8000, 1, 16).Data(nil).Bytes(), ErrInvalidField},
		{"zero channels", audiotest.NewBuilder().Fmt(16000, 0, 16).Data(nil).Bytes(), ErrInvalidField},
		{"zero bits", audiotest.NewBuilder().Fmt(16000, 1, 0).Data(nil).Bytes(), ErrInvalidField},
		{"8-bit", audiotest.NewBuilder().Fmt(16000, 1, 8).Data(nil).Bytes(), ErrUnsupportedBitDepth},
		{"24-bit", audiotest.NewBuilder().Fmt(16000, 1, 24).Data(nil).Bytes(), ErrUnsupportedBitDepth},
		{"3 channels", audiotest.NewBuilder().Fmt(16000, 3, 16).Data(nil).Bytes(), ErrUnsupportedChannels},
		{"float", audiotest.NewBuilder().FmtTag(3, 16000, 1, 32).Data(nil).Bytes(), ErrUnsupportedEncoding},
		{"adpcm", audiotest.NewBuilder().FmtTag(2, 16000, 1, 16).Data(nil).Bytes(), ErrUnsupportedEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseDescriptor(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ParseDescriptor() error = %v, want %v", err, tt.want)
			}

			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Errorf("error %T is not a *FormatError", err)
			}
		})
	}
}

func TestFormatError_Message(t *testing.T) {
	t.Parallel()

	err := &FormatError{Err: ErrUnsupportedBitDepth, Detail: "got 24 bits"}
	if got, want := err.Error(), "wav: only PCM 16-bit supported: got 24 bits"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	bare := &FormatError{Err: ErrMissingData}
	if got, want := bare.Error(), "wav: missing data chunk"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func BenchmarkParseDescriptor(b *testing.B) {
	data := audiotest.NewBuilder().
		Raw("LIST", 64, make([]byte, 64)).
		Fmt(44100, 2, 16).
		Data(make([]int16, 44100*2)).
		Bytes()

	b.ReportAllocs()
	for b.Loop() {
		_, _ = ParseDescriptor(data)
	}
}
