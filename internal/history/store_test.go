// SPDX-License-Identifier: EPL-2.0

package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", nil)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndGet(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	started := time.UnixMilli(1_760_000_000_123)
	want := Entry{
		ID:            "abc",
		Text:          "xin chào",
		Status:        "completed",
		Frames:        100,
		Bytes:         32000,
		AudioDuration: time.Second,
		Started:       started,
		Finished:      started.Add(1010 * time.Millisecond),
	}
	if err := s.Record(ctx, want); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := s.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Text != want.Text || got.Status != want.Status || got.Frames != 100 || got.Bytes != 32000 {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.AudioDuration != time.Second {
		t.Fatalf("audio duration = %v", got.AudioDuration)
	}
	if !got.Started.Equal(want.Started) || !got.Finished.Equal(want.Finished) {
		t.Fatalf("times = %v / %v", got.Started, got.Finished)
	}
	if got.Error != "" {
		t.Fatalf("error = %q", got.Error)
	}
}

func TestRecordReplaces(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	e := Entry{ID: "s1", Text: "hi", Status: "cancelled", Started: time.UnixMilli(1), Finished: time.UnixMilli(2)}
	if err := s.Record(ctx, e); err != nil {
		t.Fatal(err)
	}
	e.Status = "failed"
	e.Error = "sink: frame 3: broken pipe"
	if err := s.Record(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "failed" || got.Error != e.Error {
		t.Fatalf("unexpected entry: %+v", got)
	}

	list, err := s.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list))
	}
}

func TestList(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	for i, id := range []string{"first", "second", "third"} {
		e := Entry{ID: id, Text: id, Status: "completed", Started: time.UnixMilli(int64(1000 * (i + 1)))}
		if err := s.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "third" || list[1].ID != "second" {
		t.Fatalf("unexpected order: %+v", list)
	}
}

func TestGetMissing(t *testing.T) {
	s := openMemory(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Record(context.Background(), Entry{}); err == nil {
		t.Fatal("expected error for entry without id")
	}
}

func TestDisabled(t *testing.T) {
	s, err := Open(context.Background(), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if s.Enabled() {
		t.Fatal("store with empty path must be disabled")
	}
	if err := s.Record(context.Background(), Entry{ID: "x"}); err != nil {
		t.Fatalf("record on disabled store: %v", err)
	}
	if list, err := s.List(context.Background(), 10); err != nil || len(list) != 0 {
		t.Fatalf("list on disabled store = %v, %v", list, err)
	}
	if _, err := s.Get(context.Background(), "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get on disabled store = %v", err)
	}
}

func TestFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "history.db")
	ctx := context.Background()

	s, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Record(ctx, Entry{ID: "keep", Text: "hello", Status: "completed"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if _, err := s.Get(ctx, "keep"); err != nil {
		t.Fatalf("entry lost after reopen: %v", err)
	}
}
