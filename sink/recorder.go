// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"bytes"
	"context"
	"sync"
)

// Recorder keeps every callback it receives. It is safe for concurrent use.
//
// StartErr, FrameErr and StopErr make the matching callback fail. FrameErr is
// returned once FailAfter frames have been accepted.
type Recorder struct {
	StartErr  error
	FrameErr  error
	FailAfter int
	StopErr   error

	mu     sync.Mutex
	events []string
	frames [][]byte
	starts int
	stops  int
	stopCh chan struct{}
}

func NewRecorder() *Recorder {
	return &Recorder{stopCh: make(chan struct{})}
}

func (r *Recorder) OnStart(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, "start")
	if r.StartErr != nil {
		return r.StartErr
	}
	r.starts++
	return nil
}

func (r *Recorder) OnFrame(_ context.Context, frame []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FrameErr != nil && len(r.frames) >= r.FailAfter {
		r.events = append(r.events, "frame!")
		return r.FrameErr
	}
	r.events = append(r.events, "frame")
	r.frames = append(r.frames, bytes.Clone(frame))
	return nil
}

func (r *Recorder) OnStop(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, "stop")
	r.stops++
	if r.stops == 1 && r.stopCh != nil {
		close(r.stopCh)
	}
	return r.StopErr
}

// Stopped is closed by the first OnStop. Only Recorders built with
// NewRecorder provide it.
func (r *Recorder) Stopped() <-chan struct{} { return r.stopCh }

// Events lists callbacks in arrival order: "start", "frame", "stop", and
// "frame!" for a frame that was rejected.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Frames returns copies of the accepted frames.
func (r *Recorder) Frames() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.frames...)
}

// Bytes concatenates the accepted frames.
func (r *Recorder) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return bytes.Join(r.frames, nil)
}

func (r *Recorder) Starts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts
}

func (r *Recorder) Stops() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stops
}
