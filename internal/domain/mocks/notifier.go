package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// NotifierCall records one PostOrUpdate invocation.
type NotifierCall struct {
	ThreadIDs []string
	Payload   entities.Notification
}

// Notifier is an in-memory implementation of ports.Notifier.
// New threads are numbered thread-1, thread-2, ...
type Notifier struct {
	mu    sync.Mutex
	Calls []NotifierCall
	Err   error
	next  int
}

// NewNotifier creates a new mock Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// PostOrUpdate records the call and returns existing or new thread ids.
func (m *Notifier) PostOrUpdate(_ context.Context, threadIDs []string, payload entities.Notification) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, NotifierCall{
		ThreadIDs: append([]string(nil), threadIDs...),
		Payload:   payload,
	})
	if m.Err != nil {
		return nil, m.Err
	}
	if len(threadIDs) > 0 {
		return threadIDs, nil
	}
	m.next++
	return []string{fmt.Sprintf("thread-%d", m.next)}, nil
}

// CallCount returns the number of PostOrUpdate calls.
func (m *Notifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Snapshot returns a copy of the recorded calls.
func (m *Notifier) Snapshot() []NotifierCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]NotifierCall(nil), m.Calls...)
}
