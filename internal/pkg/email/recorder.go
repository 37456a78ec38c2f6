package email

import (
	"context"
	"sync"
)

// Recorder captures messages in memory. Setting Err makes every Send fail.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

var _ Sender = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send implements Sender
func (r *Recorder) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}

// SentTo returns messages addressed to addr.
func (r *Recorder) SentTo(addr string) []Message {
	var out []Message
	for _, m := range r.Messages() {
		for _, to := range m.To {
			if to == addr {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// Reset clears recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
}
