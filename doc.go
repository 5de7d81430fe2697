// SPDX-License-Identifier: EPL-2.0

// Package lipsync prepares speech audio for lip-sync avatar renderers and
// feeds it to them in real time.
//
// Renderers expect 16 kHz mono 16-bit little-endian PCM, at least one second
// long, delivered in small frames at playback pace. This package and its
// subpackages take speech from wherever it comes from (a TTS engine writing
// WAV, a cloud voice returning MP3 or Ogg Vorbis) and produce exactly that.
//
// # Quick Start
//
//	data, _ := os.ReadFile("reply.wav")
//	stats, err := lipsync.ConvertAndStream(ctx, data, mySink)
//
// mySink implements stream.Sink; ready-made sinks publish to NATS
// (sink/natssink), push over WebSocket (sink/wssink) or record to disk
// (sink/wavsink).
//
// # Building Blocks
//
// For more control, use the subpackages directly:
//
//	buf, err := convert.New(convert.WithTargetRate(24000)).Convert(wavData)
//	sess := stream.New(stream.WithFrameSize(640)).Start(ctx, buf, sink)
//	stats, err := sess.Wait()
//
// # Supported Formats
//
//   - WAV (PCM 16-bit, mono or stereo) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (8 to 32-bit) via formats/aiff
//
// Everything except WAV goes through formats.ToWAV first, so the converter
// is the single path to renderer PCM.
package lipsync
