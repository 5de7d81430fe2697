// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
)

const (
	FormatPCM        = 0x0001
	FormatExtensible = 0xFFFE

	fmtMinSize = 16
)

// Descriptor holds the format metadata of a WAV container and a view of its
// sample region. Data aliases the container passed to ParseDescriptor.
type Descriptor struct {
	AudioFormat   uint16
	SampleRate    int
	Channels      int
	BitsPerSample int
	Data          []byte
}

// BlockAlign is the size in bytes of one interleaved sample frame.
func (d *Descriptor) BlockAlign() int {
	return d.Channels * d.BitsPerSample / 8
}

// ParseDescriptor scans the chunk list for "fmt " and "data". The first data
// chunk ends the scan; a fmt chunk appearing after it is never seen. A data
// size that overruns the container is clipped to what is actually present.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	if len(data) < HeaderSize {
		return nil, formatErr(ErrTooShort, "got %d bytes", len(data))
	}

	var (
		d       Descriptor
		haveFmt bool
		payload []byte
		found   bool
	)

	for c := range Chunks(data) {
		switch c.ID {
		case "fmt ":
			if len(c.Payload) < fmtMinSize {
				return nil, formatErr(ErrInvalidField, "fmt chunk holds %d bytes, need %d", len(c.Payload), fmtMinSize)
			}
			d.AudioFormat = binary.LittleEndian.Uint16(c.Payload[0:2])
			d.Channels = int(binary.LittleEndian.Uint16(c.Payload[2:4]))
			d.SampleRate = int(int32(binary.LittleEndian.Uint32(c.Payload[4:8])))
			d.BitsPerSample = int(binary.LittleEndian.Uint16(c.Payload[14:16]))
			haveFmt = true
		case "data":
			payload = c.Payload
			found = true
		}
		if found {
			break
		}
	}

	if !haveFmt {
		return nil, formatErr(ErrMissingFmt, "no fmt chunk before end of scan")
	}
	if !found {
		return nil, formatErr(ErrMissingData, "no data chunk in container")
	}

	if err := d.validate(); err != nil {
		return nil, err
	}

	d.Data = payload
	return &d, nil
}

func (d *Descriptor) validate() error {
	switch {
	case d.SampleRate <= 0:
		return formatErr(ErrInvalidField, "sample rate %d", d.SampleRate)
	case d.Channels <= 0:
		return formatErr(ErrInvalidField, "channel count %d", d.Channels)
	case d.BitsPerSample <= 0:
		return formatErr(ErrInvalidField, "bits per sample %d", d.BitsPerSample)
	}

	if d.AudioFormat != FormatPCM && d.AudioFormat != FormatExtensible {
		return formatErr(ErrUnsupportedEncoding, "format tag 0x%04x", d.AudioFormat)
	}
	if d.BitsPerSample != 16 {
		return formatErr(ErrUnsupportedBitDepth, "got %d bits", d.BitsPerSample)
	}
	if d.Channels != 1 && d.Channels != 2 {
		return formatErr(ErrUnsupportedChannels, "got %d channels", d.Channels)
	}

	return nil
}
