package inputs

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/fieldsweep/pkg/domain"
)

// ErrNoPendingRequest is returned when an answer arrives while nothing is waiting.
var ErrNoPendingRequest = errors.New("no input request pending")

type answer struct {
	path string
	err  error
}

// Mailbox is an InputProvider answered programmatically, for example by the
// HTTP surface. At most one request is pending at a time.
type Mailbox struct {
	mu      sync.Mutex
	pending *domain.InputRequest
	reply   chan answer
}

// NewMailbox creates an empty Mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// RequestInput publishes req and waits for Deliver or Decline.
func (m *Mailbox) RequestInput(ctx context.Context, req domain.InputRequest) (string, error) {
	reply := make(chan answer, 1)

	m.mu.Lock()
	m.pending = &req
	m.reply = reply
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		if m.reply == reply {
			m.pending, m.reply = nil, nil
		}
		m.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-reply:
		return a.path, a.err
	}
}

// Pending returns the request currently waiting, or nil.
func (m *Mailbox) Pending() *domain.InputRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return nil
	}
	req := *m.pending
	return &req
}

// Deliver answers the pending request with a path.
func (m *Mailbox) Deliver(path string) error {
	return m.answer(answer{path: path})
}

// Decline answers the pending request with a refusal.
func (m *Mailbox) Decline() error {
	return m.answer(answer{err: domain.ErrInputDeclined})
}

func (m *Mailbox) answer(a answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reply == nil {
		return ErrNoPendingRequest
	}
	m.reply <- a
	m.pending, m.reply = nil, nil
	return nil
}
