// SPDX-License-Identifier: EPL-2.0

package stream

import "iter"

// Frames splits pcm into consecutive frames of size bytes. The last frame
// holds the remainder when len(pcm) is not a multiple of size. Frames are
// sub-slices of pcm with their capacity capped at the frame end.
// A non-positive size yields pcm as a single frame.
func Frames(pcm []byte, size int) iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		if len(pcm) == 0 {
			return
		}
		if size <= 0 {
			size = len(pcm)
		}

		for i, off := 0, 0; off < len(pcm); i, off = i+1, off+size {
			end := min(off+size, len(pcm))
			if !yield(i, pcm[off:end:end]) {
				return
			}
		}
	}
}

// FrameCount is the number of frames Frames yields for n bytes.
func FrameCount(n, size int) int {
	if n <= 0 {
		return 0
	}
	if size <= 0 {
		return 1
	}
	return (n + size - 1) / size
}
