// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

const maxEmptyReads = 100

// ReadAll drains src, bufSize values at a time, and returns every interleaved
// sample it produced. bufSize is rounded down to a whole number of frames.
//
// Example:
//
//	src, _ := decoder.Decode(file)
//	defer src.Close()
//	samples, err := audio.ReadAll(src, 4096)
func ReadAll(src Source, bufSize int) ([]int16, error) {
	channels := max(src.Channels(), 1)
	bufSize -= bufSize % channels
	if bufSize <= 0 {
		return nil, fmt.Errorf("read all: buffer of %d for %d channels: %w", bufSize, channels, ErrInvalidDstSize)
	}

	var out []int16
	buf := make([]int16, bufSize)
	empty := 0

	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)

		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("read all: %w", err)
		}
		if n > 0 {
			empty = 0
			continue
		}
		if empty++; empty >= maxEmptyReads {
			return out, fmt.Errorf("read all: %w", io.ErrNoProgress)
		}
	}
}
