// SPDX-License-Identifier: EPL-2.0

package audio

// PadToMinimum returns pcm extended with zero bytes to exactly minBytes.
// Buffers already at or above minBytes are returned as is.
func PadToMinimum(pcm []byte, minBytes int) []byte {
	if len(pcm) >= minBytes {
		return pcm
	}

	out := make([]byte, minBytes)
	copy(out, pcm)
	return out
}
