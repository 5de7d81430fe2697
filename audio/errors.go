// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrOddLength      = errors.New("pcm byte length must be even")
	ErrInvalidRate    = errors.New("sample rate must be positive")
)
