package chat

import (
	"fmt"
	"sync"

	"github.com/prattle-chat/prattle/internal/logging"
)

// Registry maps conversation keys to their subjects. Subjects are created
// lazily on first use and live for the process lifetime; they are shared by
// every endpoint attached to the same conversation.
type Registry struct {
	logger logging.Logger

	mu       sync.Mutex
	subjects map[string]*Subject
}

func NewRegistry(logger logging.Logger) *Registry {
	return &Registry{
		logger:   logger.With("component", "chat"),
		subjects: make(map[string]*Subject),
	}
}

// pairKey builds the canonical key of a direct conversation. The usernames
// are ordered lexicographically so both endpoints of the pair derive the
// same key regardless of which side opened first. This makes get-or-create
// atomic for the pair, with no window for two subjects to exist for one
// conversation.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "dm:" + a + "|" + b
}

func channelKey(id int64) string {
	return fmt.Sprintf("channel:%d", id)
}

func (r *Registry) getOrCreate(key string) *Subject {
	r.mu.Lock()
	defer r.mu.Unlock()

	subject, ok := r.subjects[key]
	if !ok {
		subject = NewSubject(r.logger.With("conversation", key))
		r.subjects[key] = subject
	}
	return subject
}

// ForPair returns the subject of the direct conversation between the two
// users, creating it on first use. ForPair(a, b) and ForPair(b, a) return
// the identical subject.
func (r *Registry) ForPair(a, b string) *Subject {
	return r.getOrCreate(pairKey(a, b))
}

// ForChannel returns the subject of the channel conversation, creating it
// on first use.
func (r *Registry) ForChannel(id int64) *Subject {
	return r.getOrCreate(channelKey(id))
}

// Len reports the number of live conversations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subjects)
}
