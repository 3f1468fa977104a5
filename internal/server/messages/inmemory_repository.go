package messages

import (
	"context"
	"sync"
)

// InMemoryRepository keeps messages in an append-ordered slice guarded by a
// RWMutex.
type InMemoryRepository struct {
	mu       sync.RWMutex
	messages []Message
	nextID   int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Add(ctx context.Context, message *Message) (*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message.ID = r.nextID
	r.nextID++
	r.messages = append(r.messages, *message)
	return message, nil
}

func (r *InMemoryRepository) filter(keep func(*Message) bool) []Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Message
	for i := range r.messages {
		if keep(&r.messages[i]) {
			result = append(result, r.messages[i])
		}
	}
	return result
}

func (r *InMemoryRepository) ByFrom(ctx context.Context, username string) ([]Message, error) {
	return r.filter(func(m *Message) bool {
		return m.FromUsername == username
	}), nil
}

func (r *InMemoryRepository) ByTo(ctx context.Context, username string) ([]Message, error) {
	return r.filter(func(m *Message) bool {
		return m.ToUsername != nil && *m.ToUsername == username
	}), nil
}

func (r *InMemoryRepository) ByChannel(ctx context.Context, channelID int64) ([]Message, error) {
	return r.filter(func(m *Message) bool {
		return m.ToChannelID != nil && *m.ToChannelID == channelID
	}), nil
}

func (r *InMemoryRepository) Between(ctx context.Context, user1, user2 string) ([]Message, error) {
	return r.filter(func(m *Message) bool {
		if m.ToUsername == nil {
			return false
		}
		return (m.FromUsername == user1 && *m.ToUsername == user2) ||
			(m.FromUsername == user2 && *m.ToUsername == user1)
	}), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.messages {
		if r.messages[i].ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *InMemoryRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = nil
	r.nextID = 1
	return nil
}
