package channels

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/prattle-chat/prattle/internal/common"
)

// InMemoryRepository keeps channels in a map guarded by a RWMutex, with
// store-assigned sequential ids.
type InMemoryRepository struct {
	mu       sync.RWMutex
	channels map[int64]Channel
	nextID   int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{channels: make(map[int64]Channel), nextID: 1}
}

func cloneChannel(c Channel) Channel {
	c.Participants = slices.Clone(c.Participants)
	c.Mods = slices.Clone(c.Mods)
	return c
}

func (r *InMemoryRepository) Create(ctx context.Context, channel *Channel) (*Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel.ID = r.nextID
	r.nextID++
	r.channels[channel.ID] = cloneChannel(*channel)
	return channel, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channel, ok := r.channels[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	channel = cloneChannel(channel)
	return &channel, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Channel, 0, len(r.channels))
	for _, channel := range r.channels {
		result = append(result, cloneChannel(channel))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, channel *Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[channel.ID]; !ok {
		return common.ErrNotFound
	}
	r.channels[channel.ID] = cloneChannel(*channel)
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.channels, id)
	return nil
}

func (r *InMemoryRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.channels = make(map[int64]Channel)
	r.nextID = 1
	return nil
}
