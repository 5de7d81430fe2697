// SPDX-License-Identifier: EPL-2.0

package lipsync

import (
	"context"

	"github.com/ik5/lipsync/audio"
	"github.com/ik5/lipsync/convert"
	"github.com/ik5/lipsync/formats"
	"github.com/ik5/lipsync/stream"
)

// Prepare is a high-level convenience function that turns synthesizer output
// of any supported container into renderer-ready PCM.
//
// The pipeline:
//  1. Non-WAV input (MP3, Ogg Vorbis, AIFF) is decoded and re-wrapped as WAV
//  2. The WAV is parsed and stereo is averaged down to mono
//  3. Samples are resampled to the converter's target rate (16 kHz by default)
//  4. Output shorter than the minimum (one second by default) is padded with silence
//
// Example:
//
//	data, _ := os.ReadFile("reply.mp3")
//	buf, err := lipsync.Prepare(data)
//	if err != nil {
//	    return err
//	}
//	// buf.Bytes() is 16 kHz mono 16-bit little-endian PCM
func Prepare(data []byte, opts ...convert.Option) (audio.Buffer, error) {
	wavData, err := formats.ToWAV(data)
	if err != nil {
		return audio.Buffer{}, err
	}
	return convert.New(opts...).Convert(wavData)
}

// ConvertAndStream prepares data with the default converter and streams it
// to sink in 320-byte frames every 10ms. It blocks until the stream ends; use
// stream.Streamer.Start for background playback.
func ConvertAndStream(ctx context.Context, data []byte, sink stream.Sink) (stream.Stats, error) {
	buf, err := Prepare(data)
	if err != nil {
		return stream.Stats{}, err
	}
	return stream.New().Stream(ctx, buf, sink)
}
