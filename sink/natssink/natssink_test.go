// SPDX-License-Identifier: EPL-2.0

package natssink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ik5/lipsync/internal/natsserver"
	"github.com/ik5/lipsync/stream"
)

func connect(t *testing.T) *nats.Conn {
	t.Helper()

	srv, err := natsserver.Start("127.0.0.1", -1, nil)
	if err != nil {
		t.Fatalf("start nats: %v", err)
	}
	t.Cleanup(srv.Shutdown)

	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(nc.Close)
	return nc
}

func TestSink_PublishesSession(t *testing.T) {
	t.Parallel()

	nc := connect(t)

	sub, err := nc.SubscribeSync("test.audio.>")
	if err != nil {
		t.Fatal(err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatal(err)
	}

	s, err := New(nc, WithPrefix("test.audio"), WithSampleRate(16000))
	if err != nil {
		t.Fatal(err)
	}

	pcm := make([]byte, 641)
	for i := range pcm {
		pcm[i] = byte(i)
	}

	_, err = stream.New(stream.WithInterval(0)).StreamPCM(context.Background(), pcm, s)
	if err != nil {
		t.Fatalf("StreamPCM() error = %v", err)
	}

	var msgs []*nats.Msg
	for range 5 {
		m, err := sub.NextMsg(2 * time.Second)
		if err != nil {
			t.Fatalf("NextMsg() after %d messages: %v", len(msgs), err)
		}
		msgs = append(msgs, m)
	}

	session := s.Session()
	wantSubjects := []string{"start", "frame", "frame", "frame", "stop"}
	for i, m := range msgs {
		if want := "test.audio." + session + "." + wantSubjects[i]; m.Subject != want {
			t.Errorf("msg %d subject = %q, want %q", i, m.Subject, want)
		}
		if got := m.Header.Get(HeaderSession); got != session {
			t.Errorf("msg %d session header = %q", i, got)
		}
	}

	var ann Announcement
	if err := json.Unmarshal(msgs[0].Data, &ann); err != nil {
		t.Fatal(err)
	}
	if ann.Session != session || ann.SampleRate != 16000 || ann.Channels != 1 || ann.Bits != 16 {
		t.Errorf("announcement = %+v", ann)
	}

	var joined []byte
	for i, m := range msgs[1:4] {
		if got := m.Header.Get(HeaderSeq); got != strconv.Itoa(i) {
			t.Errorf("frame %d seq = %q", i, got)
		}
		joined = append(joined, m.Data...)
	}
	if !bytes.Equal(joined, pcm) {
		t.Error("frames do not reassemble to the input")
	}

	var sum Summary
	if err := json.Unmarshal(msgs[4].Data, &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Frames != 3 || sum.Bytes != 641 || sum.Session != session {
		t.Errorf("summary = %+v", sum)
	}
}

func TestSink_NewSessionPerStream(t *testing.T) {
	t.Parallel()

	nc := connect(t)
	s, err := New(nc)
	if err != nil {
		t.Fatal(err)
	}

	streamer := stream.New(stream.WithInterval(0))
	if _, err := streamer.StreamPCM(context.Background(), make([]byte, 10), s); err != nil {
		t.Fatal(err)
	}
	first := s.Session()

	if _, err := streamer.StreamPCM(context.Background(), make([]byte, 10), s); err != nil {
		t.Fatal(err)
	}
	if s.Session() == first {
		t.Error("session id reused across streams")
	}
	if s.Subject("frame") != DefaultPrefix+"."+s.Session()+".frame" {
		t.Errorf("Subject() = %q", s.Subject("frame"))
	}
}

func TestSink_ClosedConnection(t *testing.T) {
	t.Parallel()

	nc := connect(t)
	s, err := New(nc)
	if err != nil {
		t.Fatal(err)
	}
	nc.Close()

	_, err = stream.New(stream.WithInterval(0)).StreamPCM(context.Background(), make([]byte, 10), s)
	var se *stream.SinkError
	if !errors.As(err, &se) || se.Op != stream.OpStart {
		t.Errorf("error = %v, want start SinkError", err)
	}
	if !errors.Is(err, nats.ErrConnectionClosed) {
		t.Errorf("error = %v, want nats.ErrConnectionClosed", err)
	}
}

// deadlinePublisher fails the flush the way *nats.Conn does when the
// context carries no deadline.
type deadlinePublisher struct {
	published int
	flushed   bool
}

func (p *deadlinePublisher) PublishMsg(*nats.Msg) error {
	p.published++
	return nil
}

func (p *deadlinePublisher) FlushWithContext(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return nats.ErrNoDeadlineContext
	}
	p.flushed = true
	return nil
}

func TestSink_StopWithoutDeadline(t *testing.T) {
	t.Parallel()

	pub := &deadlinePublisher{}
	s, err := New(pub)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.WithoutCancel(context.Background())
	if err := s.OnStart(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.OnStop(ctx); err != nil {
		t.Fatalf("OnStop() error = %v", err)
	}
	if !pub.flushed || pub.published != 2 {
		t.Errorf("flushed = %v, published = %d", pub.flushed, pub.published)
	}
}

func TestSink_StreamFlushesOnStop(t *testing.T) {
	t.Parallel()

	pub := &deadlinePublisher{}
	s, err := New(pub)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := stream.New(stream.WithInterval(0)).StreamPCM(context.Background(), make([]byte, 10), s); err != nil {
		t.Fatalf("StreamPCM() error = %v", err)
	}
	if !pub.flushed {
		t.Error("stop was not flushed")
	}
}

func TestNew_NilConn(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); !errors.Is(err, ErrNoConn) {
		t.Errorf("New(nil) error = %v, want ErrNoConn", err)
	}
}
