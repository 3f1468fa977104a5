// Package chat implements the realtime fan-out core: the conversation
// registry mapping conversation keys to subjects, the subject/observer
// broadcast primitive, and the per-connection endpoint state machines for
// direct and channel conversations.
package chat

import (
	"context"
	"slices"
	"sync"

	"github.com/prattle-chat/prattle/internal/logging"
	"github.com/prattle-chat/prattle/internal/server/messages"
)

// Observer receives messages published to a subject. Endpoints attach
// themselves as observers of their conversation's subject.
type Observer interface {
	// Deliver pushes a broadcast message over the observer's connection.
	Deliver(msg *messages.Message) error
}

// Subject is the broadcast point of one conversation. It holds the most
// recently published message and the live observer set. Attach, Detach and
// Publish are safe to call concurrently from different connections.
type Subject struct {
	logger logging.Logger

	mu        sync.Mutex
	observers []Observer
	last      *messages.Message
}

func NewSubject(logger logging.Logger) *Subject {
	return &Subject{logger: logger}
}

func (s *Subject) Attach(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Subject) Detach(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = slices.DeleteFunc(s.observers, func(existing Observer) bool {
		return existing == o
	})
}

// Last returns the most recently published message, nil before the first
// publish.
func (s *Subject) Last() *messages.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// ObserverCount reports the number of currently attached observers.
func (s *Subject) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// Publish records msg as the subject's current message and delivers it to
// every attached observer in registration order. The observer list is
// snapshotted under the lock so concurrent attach/detach cannot corrupt the
// iteration; deliveries happen outside the lock. A failed delivery is
// logged and does not prevent delivery to the remaining observers.
func (s *Subject) Publish(ctx context.Context, msg *messages.Message) {
	s.mu.Lock()
	s.last = msg
	snapshot := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, o := range snapshot {
		if err := o.Deliver(msg); err != nil {
			s.logger.Error(ctx, "broadcast delivery failed", "error", err)
		}
	}
}
