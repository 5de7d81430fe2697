// SPDX-License-Identifier: EPL-2.0

// Package audio provides the 16-bit PCM primitives used to normalize speech
// audio before it is streamed to a renderer.
//
// # Byte level transforms
//
// The transforms work on little-endian int16 byte slices and always allocate
// their output:
//
//	mono := audio.DownmixStereo16(stereo)       // (l+r)/2, truncated
//	pcm := audio.Resample16(mono, 44100, 16000) // linear interpolation
//	pcm = audio.PadToMinimum(pcm, 32000)        // zero-extend to one second
//
// Resample16 produces floor(n*to/from) samples and is an exact copy when the
// rates match.
//
// # Buffer
//
// Buffer is the owned, even-length result of a conversion together with its
// sample rate:
//
//	buf, err := audio.NewBuffer(pcm, 16000)
//	fmt.Println(buf.Duration())
//
// # Source Interface
//
// Compressed formats are decoded through the Source interface, which yields
// interleaved int16 samples:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []int16) (int, error)
//	    Close() error
//	}
//
// ReadAll drains a Source. The Registry maps a format key to its Decoder:
//
//	registry := audio.NewRegistry()
//	registry.Register("mp3", mp3.Decoder{})
//	decoder, _ := registry.Get("mp3")
//
// # Error Handling
//
// ReadSamples returns io.EOF when no more data is available:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    if err == io.EOF {
//	        break // Normal end of stream
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // Process n samples from buf
//	}
package audio
