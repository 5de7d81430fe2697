// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"slices"
	"testing"

	"github.com/ik5/lipsync/internal/audiotest"
)

func collect(data []byte) []Chunk {
	var out []Chunk
	for c := range Chunks(data) {
		out = append(out, c)
	}
	return out
}

func TestChunks_CanonicalLayout(t *testing.T) {
	t.Parallel()

	data := audiotest.WAV(16000, 1, []int16{1, 2, 3})
	chunks := collect(data)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].ID != "fmt " || chunks[0].Size != 16 || chunks[0].Offset != 20 {
		t.Errorf("chunks[0] = %+v, want fmt at 20 size 16", chunks[0])
	}
	if chunks[1].ID != "data" || chunks[1].Size != 6 || len(chunks[1].Payload) != 6 {
		t.Errorf("chunks[1] = %+v, want data size 6", chunks[1])
	}
}

func TestChunks_SkipsUnknownBySize(t *testing.T) {
	t.Parallel()

	data := audiotest.NewBuilder().
		Raw("LIST", 10, make([]byte, 10)).
		Raw("junk", 3, []byte{1, 2, 3}).
		Fmt(8000, 1, 16).
		Data([]int16{7}).
		Bytes()

	var ids []string
	for c := range Chunks(data) {
		ids = append(ids, c.ID)
	}

	want := []string{"LIST", "junk", "fmt ", "data"}
	if !slices.Equal(ids, want) {
		t.Errorf("ids = %q, want %q", ids, want)
	}
}

func TestChunks_ClipsOverrunningPayload(t *testing.T) {
	t.Parallel()

	data := audiotest.NewBuilder().Raw("data", 1000, []byte{1, 2, 3, 4}).Bytes()
	chunks := collect(data)

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Size != 1000 {
		t.Errorf("Size = %d, want declared 1000", chunks[0].Size)
	}
	if len(chunks[0].Payload) != 4 {
		t.Errorf("len(Payload) = %d, want 4", len(chunks[0].Payload))
	}
}

func TestChunks_HugeDeclaredSizeStops(t *testing.T) {
	t.Parallel()

	data := audiotest.NewBuilder().
		Raw("big!", 0xFFFFFFFF, []byte{1, 2}).
		Fmt(8000, 1, 16).
		Bytes()

	chunks := collect(data)
	if len(chunks) != 1 || chunks[0].ID != "big!" {
		t.Errorf("chunks = %+v, want only the oversized chunk", chunks)
	}
}

func TestChunks_TooShort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"header only", []byte("RIFF\x00\x00\x00\x00WAVE")},
		{"partial chunk header", []byte("RIFF\x00\x00\x00\x00WAVEfmt \x10\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := collect(tt.data); len(got) != 0 {
				t.Errorf("Chunks() yielded %d chunks, want 0", len(got))
			}
		})
	}
}

func TestChunks_EarlyBreak(t *testing.T) {
	t.Parallel()

	data := audiotest.NewBuilder().Raw("aaaa", 0, nil).Raw("bbbb", 0, nil).Raw("cccc", 0, nil).Bytes()

	n := 0
	for range Chunks(data) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d chunks, want 2", n)
	}
}

func TestChunks_PayloadIsBounded(t *testing.T) {
	t.Parallel()

	data := audiotest.NewBuilder().Raw("abcd", 2, []byte{9, 9}).Raw("efgh", 0, nil).Bytes()
	first := collect(data)[0]

	if cap(first.Payload) != 2 {
		t.Errorf("cap(Payload) = %d, want 2 so appends cannot clobber the next chunk", cap(first.Payload))
	}
	if got := binary.LittleEndian.Uint16(first.Payload); got != 0x0909 {
		t.Errorf("payload = %#x, want 0x0909", got)
	}
}
