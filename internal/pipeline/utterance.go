// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"github.com/ik5/lipsync/audio"
	"github.com/ik5/lipsync/stream"
)

// Utterance is one line of speech being streamed.
type Utterance struct {
	ID    string
	Text  string
	Audio audio.Buffer

	session *stream.Session
	done    chan struct{}
	stats   stream.Stats
	err     error
}

// Wait blocks until streaming has ended and the outcome has been recorded.
func (u *Utterance) Wait() (stream.Stats, error) {
	<-u.done
	return u.stats, u.err
}

func (u *Utterance) Cancel() { u.session.Cancel() }

func (u *Utterance) Done() <-chan struct{} { return u.done }
