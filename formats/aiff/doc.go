// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF audio into an audio.Source using
// github.com/go-audio/aiff.
//
// 8, 16, 24 and 32-bit integer PCM are accepted and rescaled to 16 bits.
// The go-audio decoder needs an io.ReadSeeker; other readers are buffered in
// memory first.
package aiff
