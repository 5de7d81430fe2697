// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio into an audio.Source.
//
// Decoding is done by github.com/hajimehoshi/go-mp3, which always produces
// interleaved stereo 16-bit PCM, so the Source reports two channels even for
// mono files.
//
//	src, err := mp3.Decoder{}.Decode(f)
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//	samples, err := audio.ReadAll(src, 4096)
package mp3
