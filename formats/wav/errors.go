// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
)

var (
	ErrTooShort            = errors.New("container shorter than RIFF header")
	ErrMissingFmt          = errors.New("missing fmt chunk")
	ErrMissingData         = errors.New("missing data chunk")
	ErrInvalidField        = errors.New("invalid format field")
	ErrUnsupportedBitDepth = errors.New("only PCM 16-bit supported")
	ErrUnsupportedChannels = errors.New("only mono or stereo supported")
	ErrUnsupportedEncoding = errors.New("only uncompressed PCM supported")
)

// FormatError reports a malformed or unsupported WAV container.
// Err is always one of the package sentinels, so callers can match with errors.Is.
type FormatError struct {
	Err    error
	Detail string
}

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return "wav: " + e.Err.Error()
	}
	return fmt.Sprintf("wav: %s: %s", e.Err, e.Detail)
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErr(err error, format string, args ...any) *FormatError {
	return &FormatError{Err: err, Detail: fmt.Sprintf(format, args...)}
}
