// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE containers holding 16-bit PCM.
//
// # Parsing
//
// ParseDescriptor walks the chunk list of an in-memory container and returns
// the format fields together with a view of the first data chunk:
//
//	d, err := wav.ParseDescriptor(data)
//	if err != nil {
//	    // errors.Is(err, wav.ErrUnsupportedBitDepth), ...
//	}
//	fmt.Println(d.SampleRate, d.Channels, len(d.Data))
//
// The parser is deliberately lenient about the container itself. The RIFF and
// WAVE magic are not checked, unknown chunks are skipped by their declared size
// and a data chunk whose size overruns the buffer is clipped to the bytes that
// are actually present. It is strict about the sample format: only PCM (or
// WAVE_FORMAT_EXTENSIBLE) with 16 bits per sample and one or two channels is
// accepted.
//
// Chunks exposes the underlying iterator for callers that need other chunks:
//
//	for c := range wav.Chunks(data) {
//	    fmt.Println(c.ID, c.Size)
//	}
//
// # Writing
//
// WriteWAV16 writes a canonical 44-byte header followed by interleaved
// samples. WriteFile stores mono PCM bytes through the go-audio encoder:
//
//	err := wav.WriteFile("out.wav", 16000, pcm)
//
// # Errors
//
// Every parse failure is a *FormatError wrapping one of the Err* sentinels,
// so both errors.Is and errors.As work.
package wav
