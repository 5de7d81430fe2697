// SPDX-License-Identifier: EPL-2.0

// Command lipsync converts speech audio to renderer PCM and streams spoken
// replies to lip-sync avatar renderers.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

var version = "0.1.0-dev"

const usage = `usage: lipsync <command> [flags]

commands:
  convert   convert a WAV/MP3/Ogg/AIFF file to 16 kHz mono PCM or WAV
  speak     synthesize a reply (or given text) and stream it to a sink
  history   list recently streamed sessions
  version   print version and exit
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "convert":
		err = runConvert(args, os.Stderr)
	case "speak":
		err = runSpeak(ctx, args)
	case "history":
		err = runHistory(ctx, args, os.Stdout)
	case "version", "-version", "--version":
		fmt.Println(version)
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "lipsync:", err)
		stop()
		os.Exit(1)
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
