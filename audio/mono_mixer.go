// SPDX-License-Identifier: EPL-2.0

package audio

import "encoding/binary"

// DownmixStereo16 averages each interleaved left/right pair into one mono
// sample. The average truncates toward zero. Trailing bytes that do not form a
// whole pair are dropped. The result never aliases pcm.
func DownmixStereo16(pcm []byte) []byte {
	frames := len(pcm) / 4
	out := make([]byte, frames*2)

	for i := range frames {
		l := int32(int16(binary.LittleEndian.Uint16(pcm[4*i:])))
		r := int32(int16(binary.LittleEndian.Uint16(pcm[4*i+2:])))
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16((l+r)/2)))
	}

	return out
}
