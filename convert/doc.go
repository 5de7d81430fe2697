// SPDX-License-Identifier: EPL-2.0

// Package convert normalizes speech synthesizer WAV output into the PCM format
// a lip-sync renderer consumes: 16 kHz, mono, 16-bit little-endian, at least
// one second long.
//
//	buf, err := convert.Convert(wavBytes)
//	if err != nil {
//	    var fe *wav.FormatError
//	    if errors.As(err, &fe) {
//	        // malformed or unsupported container, drop the utterance
//	    }
//	}
//
// Conversion is pure and synchronous. It does no I/O and keeps no state between
// calls, so a single Converter may be shared between goroutines.
package convert
