// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/ik5/lipsync/internal/config"
	"github.com/ik5/lipsync/internal/history"
)

func runHistory(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("history")
	var (
		configPath = fs.String("config", "", "path to configuration file")
		limit      = fs.Int("n", 20, "number of sessions to list")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return errors.New("history: history.path is not configured")
	}

	store, err := history.Open(ctx, cfg.History.Path, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(ctx, *limit)
	if err != nil {
		return err
	}
	return printHistory(out, entries)
}

func printHistory(out io.Writer, entries []history.Entry) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTARTED\tSTATUS\tFRAMES\tAUDIO\tTEXT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%v\t%s\n",
			e.ID, e.Started.Format(time.DateTime), e.Status, e.Frames, e.AudioDuration, truncate(e.Text, 40))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
