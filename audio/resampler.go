// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"math"

	"github.com/ik5/lipsync/utils"
)

// Resample16 converts mono 16-bit PCM from one rate to another with linear
// interpolation. The output holds floor(n*to/from) samples, where n is the
// input sample count. When from == to the input is copied unchanged.
//
// Output sample i is taken from source position i*from/to; the two neighbours
// are clamped to the input range and the interpolated value is rounded to the
// nearest integer.
func Resample16(pcm []byte, from, to int) []byte {
	n := len(pcm) / 2
	if from == to {
		out := make([]byte, n*2)
		copy(out, pcm)
		return out
	}
	if n == 0 || from <= 0 || to <= 0 {
		return []byte{}
	}

	outN := int(int64(n) * int64(to) / int64(from))
	out := make([]byte, outN*2)
	last := n - 1

	at := func(i int) float64 {
		i = max(0, min(i, last))
		return float64(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}

	for i := range outN {
		pos := float64(i) * float64(from) / float64(to)
		p0 := int(math.Floor(pos))
		t := pos - float64(p0)

		s0, s1 := at(p0), at(p0+1)
		v := utils.ClampInt16(math.Round(s0 + (s1-s0)*t))
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}

	return out
}
