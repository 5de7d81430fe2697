// SPDX-License-Identifier: EPL-2.0

// Package audiotest builds synthetic audio fixtures for tests.
package audiotest

import (
	"bytes"
	"encoding/binary"
)

// Chunk is a raw RIFF chunk appended verbatim by Builder.
type Chunk struct {
	ID      string
	Size    uint32 // declared size; Payload may be shorter or longer
	Payload []byte
}

// Builder assembles RIFF/WAVE containers chunk by chunk, so tests can produce
// containers a real encoder never would (missing chunks, lying sizes, odd layouts).
type Builder struct {
	chunks []Chunk
}

// NewBuilder starts an empty container.
func NewBuilder() *Builder { return &Builder{} }

// Fmt appends a 16-byte PCM fmt chunk.
func (b *Builder) Fmt(sampleRate, channels, bitsPerSample int) *Builder {
	return b.FmtTag(1, sampleRate, channels, bitsPerSample)
}

// FmtTag appends a fmt chunk with an explicit format tag.
func (b *Builder) FmtTag(tag uint16, sampleRate, channels, bitsPerSample int) *Builder {
	p := make([]byte, 16)
	blockAlign := channels * bitsPerSample / 8
	binary.LittleEndian.PutUint16(p[0:2], tag)
	binary.LittleEndian.PutUint16(p[2:4], uint16(channels))
	binary.LittleEndian.PutUint32(p[4:8], uint32(sampleRate))
	binary.LittleEndian.PutUint32(p[8:12], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(p[12:14], uint16(blockAlign))
	binary.LittleEndian.PutUint16(p[14:16], uint16(bitsPerSample))
	return b.Raw("fmt ", uint32(len(p)), p)
}

// Data appends a data chunk holding samples as little-endian int16.
func (b *Builder) Data(samples []int16) *Builder {
	p := Int16Bytes(samples)
	return b.Raw("data", uint32(len(p)), p)
}

// Raw appends an arbitrary chunk with a declared size independent of the payload.
func (b *Builder) Raw(id string, size uint32, payload []byte) *Builder {
	b.chunks = append(b.chunks, Chunk{ID: id, Size: size, Payload: payload})
	return b
}

// Bytes renders the container with its 12-byte RIFF header.
func (b *Builder) Bytes() []byte {
	body := new(bytes.Buffer)
	for _, c := range b.chunks {
		body.WriteString(c.ID)
		_ = binary.Write(body, binary.LittleEndian, c.Size)
		body.Write(c.Payload)
	}

	out := new(bytes.Buffer)
	out.WriteString("RIFF")
	_ = binary.Write(out, binary.LittleEndian, uint32(4+body.Len()))
	out.WriteString("WAVE")
	out.Write(body.Bytes())
	return out.Bytes()
}

// WAV returns a canonical fmt+data container.
func WAV(sampleRate, channels int, samples []int16) []byte {
	return NewBuilder().Fmt(sampleRate, channels, 16).Data(samples).Bytes()
}

// Int16Bytes encodes samples as little-endian bytes.
func Int16Bytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

// BytesInt16 decodes little-endian bytes; a trailing odd byte is ignored.
func BytesInt16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return out
}

// Ramp returns n samples counting up from start.
func Ramp(n int, start int16) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = start + int16(i)
	}
	return out
}
