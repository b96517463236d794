package dispatch

import (
	"context"
	"errors"
	"sync"

	"newsletter-back/pkg/mailer"
)

// scriptedMailer fails or panics for configured recipients and records the rest.
type scriptedMailer struct {
	mu     sync.Mutex
	fail   map[string]error
	panics map[string]bool
	sent   []mailer.Message

	// afterSend runs outside the lock with the number of messages sent so far.
	afterSend func(n int)
}

func newScriptedMailer() *scriptedMailer {
	return &scriptedMailer{
		fail:   make(map[string]error),
		panics: make(map[string]bool),
	}
}

func (m *scriptedMailer) failFor(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fail[email] = errors.New("550 mailbox unavailable")
}

func (m *scriptedMailer) panicFor(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.panics[email] = true
}

func (m *scriptedMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()

	if m.panics[msg.To] {
		m.mu.Unlock()
		panic("transport exploded")
	}

	if err := m.fail[msg.To]; err != nil {
		m.mu.Unlock()
		return err
	}

	m.sent = append(m.sent, msg)
	n, hook := len(m.sent), m.afterSend
	m.mu.Unlock()

	if hook != nil {
		hook(n)
	}

	return nil
}

func (m *scriptedMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sent)
}
