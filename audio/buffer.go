// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Buffer is an owned run of little-endian 16-bit mono samples at a known rate.
// Its byte length is always even.
type Buffer struct {
	pcm        []byte
	sampleRate int
}

// NewBuffer takes ownership of pcm. Callers must not modify pcm afterwards.
func NewBuffer(pcm []byte, sampleRate int) (Buffer, error) {
	if len(pcm)%2 != 0 {
		return Buffer{}, fmt.Errorf("%w: got %d bytes", ErrOddLength, len(pcm))
	}
	if sampleRate <= 0 {
		return Buffer{}, fmt.Errorf("%w: got %d", ErrInvalidRate, sampleRate)
	}

	return Buffer{pcm: pcm, sampleRate: sampleRate}, nil
}

// Bytes returns the underlying PCM. The slice is shared, not copied.
func (b Buffer) Bytes() []byte   { return b.pcm }
func (b Buffer) SampleRate() int { return b.sampleRate }

// Len is the byte length.
func (b Buffer) Len() int { return len(b.pcm) }

// Samples is the number of 16-bit samples.
func (b Buffer) Samples() int { return len(b.pcm) / 2 }

// Duration of the buffer when played at its sample rate.
func (b Buffer) Duration() time.Duration {
	if b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Samples()) * time.Second / time.Duration(b.sampleRate)
}

// Int16s decodes the buffer into a fresh sample slice.
func (b Buffer) Int16s() []int16 {
	out := make([]int16, b.Samples())
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b.pcm[2*i:]))
	}
	return out
}
