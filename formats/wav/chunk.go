// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"iter"
)

const (
	// HeaderSize is the outer "RIFF" <size> "WAVE" header that precedes the chunk list.
	HeaderSize = 12

	chunkHeaderSize = 8
)

// Chunk is one entry of the RIFF chunk list.
type Chunk struct {
	ID      string
	Size    uint32 // declared payload size, may exceed what is actually present
	Offset  int    // offset of the payload within the container
	Payload []byte // payload clipped to the container bounds
}

// Chunks walks the chunk list of a RIFF container, starting right after the
// 12-byte outer header. Each step advances by 8 + declared size, whatever the
// chunk type, so unknown chunks are skipped. Iteration ends when fewer than 8
// bytes remain.
func Chunks(data []byte) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		offset := HeaderSize
		for offset+chunkHeaderSize <= len(data) {
			size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
			start := offset + chunkHeaderSize

			end := len(data)
			if uint64(size) < uint64(end-start) {
				end = start + int(size)
			}

			c := Chunk{
				ID:      string(data[offset : offset+4]),
				Size:    size,
				Offset:  start,
				Payload: data[start:end:end],
			}
			if !yield(c) {
				return
			}

			next := uint64(start) + uint64(size)
			if next > uint64(len(data)) {
				return
			}
			offset = int(next)
		}
	}
}
