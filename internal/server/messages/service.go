package messages

import (
	"context"
	"fmt"
	"sort"

	"github.com/prattle-chat/prattle/internal/logging"
)

// Service provides message log operations on top of a Repository. All
// query results are sorted ascending by timestamp; messages without a
// timestamp keep their relative position (the sort is stable and treats
// them as equal).
type Service struct {
	repo   Repository
	logger logging.Logger
}

func NewService(repo Repository, logger logging.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With("component", "messages"),
	}
}

// Add appends the message to the log.
func (s *Service) Add(ctx context.Context, message *Message) (*Message, error) {
	added, err := s.repo.Add(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("error adding message: %w", err)
	}
	return added, nil
}

func sortByTimestamp(list []Message) []Message {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Timestamp, list[j].Timestamp
		if a == nil || b == nil {
			return false
		}
		return a.Before(*b)
	})
	return list
}

func (s *Service) ByFrom(ctx context.Context, username string) ([]Message, error) {
	list, err := s.repo.ByFrom(ctx, username)
	if err != nil {
		return nil, err
	}
	return sortByTimestamp(list), nil
}

func (s *Service) ByTo(ctx context.Context, username string) ([]Message, error) {
	list, err := s.repo.ByTo(ctx, username)
	if err != nil {
		return nil, err
	}
	return sortByTimestamp(list), nil
}

func (s *Service) ByChannel(ctx context.Context, channelID int64) ([]Message, error) {
	list, err := s.repo.ByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return sortByTimestamp(list), nil
}

// Between returns the conversation history of the unordered user pair,
// matching messages sent in either direction.
func (s *Service) Between(ctx context.Context, user1, user2 string) ([]Message, error) {
	list, err := s.repo.Between(ctx, user1, user2)
	if err != nil {
		return nil, err
	}
	return sortByTimestamp(list), nil
}

// Update is a deliberate no-op: messages are immutable once logged. The
// operation exists so administrative callers get an explicit success
// instead of a silent failure.
func (s *Service) Update(ctx context.Context, message *Message) error {
	s.logger.Debug(ctx, "message update ignored, messages are immutable", "id", message.ID)
	return nil
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// RemoveAll clears the log. Reset utility for tests and tooling, not a
// normal operational path.
func (s *Service) RemoveAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}
