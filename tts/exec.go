// SPDX-License-Identifier: EPL-2.0

package tts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
)

const maxStderr = 2048

// ExecSynth runs an external engine once per utterance. The text is written
// to the process stdin and the audio container is read from its stdout.
type ExecSynth struct {
	cmd []string
	env []string
}

// NewExecSynth parses command with shell quoting rules, e.g.
// `piper --model "/models/vi.onnx" --output_file -`.
func NewExecSynth(command string, env ...string) (*ExecSynth, error) {
	parser := shellwords.NewParser()
	parser.ParseEnv = true
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse tts command: %w", err)
	}
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}
	return &ExecSynth{cmd: args, env: env}, nil
}

// Command returns the parsed argv.
func (e *ExecSynth) Command() []string {
	return append([]string(nil), e.cmd...)
}

func (e *ExecSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	cmd := exec.CommandContext(ctx, e.cmd[0], e.cmd[1:]...)
	if len(e.env) > 0 {
		cmd.Env = append(cmd.Environ(), e.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[:maxStderr]
		}
		if msg != "" {
			return nil, fmt.Errorf("tts: %s: %w: %s", e.cmd[0], err, msg)
		}
		return nil, fmt.Errorf("tts: %s: %w", e.cmd[0], err)
	}

	if stdout.Len() == 0 {
		return nil, ErrNoAudio
	}
	return stdout.Bytes(), nil
}
