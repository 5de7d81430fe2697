// SPDX-License-Identifier: EPL-2.0

package llm

import (
	"context"
	"strings"
)

type mockClient struct{}

// NewMock returns a Client that echoes the prompt back, for offline runs.
func NewMock() Client { return mockClient{} }

func (mockClient) Chat(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return "You said: " + prompt, nil
}
