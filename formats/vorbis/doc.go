// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio into an audio.Source using
// github.com/jfreymuth/oggvorbis. Decoded float samples are clamped and
// scaled to int16.
//
//	src, err := vorbis.Decoder{}.Decode(f)
//	if err != nil {
//	    return err
//	}
//	samples, err := audio.ReadAll(src, 4096)
package vorbis
