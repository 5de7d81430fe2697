// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/lipsync"
	"github.com/ik5/lipsync/convert"
	"github.com/ik5/lipsync/formats/wav"
)

func runConvert(args []string, out io.Writer) error {
	fs := newFlagSet("convert")
	var (
		in       = fs.String("in", "", "input audio file (wav, mp3, ogg, aiff)")
		outPath  = fs.String("out", "", "output file; .wav writes a WAV container, anything else raw PCM")
		rate     = fs.Int("rate", convert.DefaultTargetRate, "output sample rate")
		minBytes = fs.Int("min-bytes", convert.DefaultMinBytes, "pad output with silence to at least this many bytes")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *outPath == "" {
		return errors.New("convert: -in and -out are required")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return err
	}

	buf, err := lipsync.Prepare(data, convert.WithTargetRate(*rate), convert.WithMinBytes(*minBytes))
	if err != nil {
		return fmt.Errorf("convert %s: %w", *in, err)
	}

	if strings.EqualFold(filepath.Ext(*outPath), ".wav") {
		err = wav.WriteFile(*outPath, buf.SampleRate(), buf.Bytes())
	} else {
		err = os.WriteFile(*outPath, buf.Bytes(), 0o644)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d bytes, %d Hz mono, %v\n", *outPath, buf.Len(), buf.SampleRate(), buf.Duration())
	return nil
}
