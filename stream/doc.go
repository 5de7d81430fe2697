// SPDX-License-Identifier: EPL-2.0

// Package stream paces PCM to a Sink at real-time speed.
//
// A buffer is cut into 320-byte frames (10 ms at 16 kHz mono 16-bit) and one
// frame is handed to the sink per interval:
//
//	OnStart -> OnFrame x N -> OnStop
//
// Stream blocks for the length of the audio. Start runs the same loop on its
// own goroutine and returns a Session that can be waited on or cancelled:
//
//	sess := stream.New().Start(ctx, buf, renderer)
//	...
//	sess.Cancel()
//	stats, err := sess.Wait()
//
// Cancellation is observed at every frame boundary. OnStop runs exactly once
// whenever OnStart succeeded, including after a sink failure or cancellation,
// and it receives a context that is not cancelled.
package stream
