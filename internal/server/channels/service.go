package channels

import (
	"context"
	"errors"
	"fmt"

	"github.com/prattle-chat/prattle/internal/common"
	"github.com/prattle-chat/prattle/internal/logging"
	"github.com/prattle-chat/prattle/internal/server/users"
)

// Service provides channel CRUD and membership management. Users are
// resolved through the account directory's repository; every membership
// mutation re-applies the participant/mod exclusivity invariant before
// persisting.
type Service struct {
	repo     Repository
	userRepo users.Repository
	logger   logging.Logger
}

func NewService(repo Repository, userRepo users.Repository, logger logging.Logger) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		logger:   logger.With("component", "channels"),
	}
}

// resolveUsernames keeps only names that exist in the account directory.
// Unknown names are dropped silently; storage failures propagate.
func (s *Service) resolveUsernames(ctx context.Context, names []string) ([]string, error) {
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		_, err := s.userRepo.FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return nil, err
		}
		resolved = append(resolved, name)
	}
	return resolved, nil
}

// Create builds a channel from the given name lists. Unknown usernames are
// dropped, not errors.
func (s *Service) Create(ctx context.Context, name string, participantNames, modNames []string) (*Channel, error) {
	participants, err := s.resolveUsernames(ctx, participantNames)
	if err != nil {
		return nil, err
	}
	mods, err := s.resolveUsernames(ctx, modNames)
	if err != nil {
		return nil, err
	}

	channel := &Channel{Name: name, Participants: participants, Mods: mods}
	channel.dedupeMembership()

	created, err := s.repo.Create(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("error creating channel %q: %w", name, err)
	}

	s.logger.Info(ctx, "channel created", "id", created.ID, "name", name)
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Channel, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Channel, error) {
	return s.repo.List(ctx)
}

// ChannelsForUser returns the channels in which the user is a participant
// or a mod.
func (s *Service) ChannelsForUser(ctx context.Context, username string) ([]Channel, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Channel, 0)
	for _, channel := range all {
		if channel.HasParticipant(username) || channel.HasMod(username) {
			result = append(result, channel)
		}
	}
	return result, nil
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// resolve loads the channel and verifies the user exists. Both absences
// surface as common.ErrNotFound with distinguishing context.
func (s *Service) resolve(ctx context.Context, channelID int64, username string) (*Channel, error) {
	channel, err := s.repo.GetByID(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("channel %d: %w", channelID, err)
	}
	if _, err := s.userRepo.FindByName(ctx, username); err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	return channel, nil
}

func (s *Service) persist(ctx context.Context, channel *Channel) error {
	channel.dedupeMembership()
	return s.repo.Update(ctx, channel)
}

func (s *Service) AddParticipant(ctx context.Context, channelID int64, username string) error {
	channel, err := s.resolve(ctx, channelID, username)
	if err != nil {
		return err
	}
	channel.addParticipant(username)
	return s.persist(ctx, channel)
}

func (s *Service) RemoveParticipant(ctx context.Context, channelID int64, username string) error {
	channel, err := s.resolve(ctx, channelID, username)
	if err != nil {
		return err
	}
	channel.removeParticipant(username)
	return s.persist(ctx, channel)
}

// Promote moves a current participant into the mod set. Promoting a user
// who is not a participant is an invalid state transition.
func (s *Service) Promote(ctx context.Context, channelID int64, username string) error {
	channel, err := s.resolve(ctx, channelID, username)
	if err != nil {
		return err
	}
	if !channel.HasParticipant(username) {
		return fmt.Errorf("user %q is not a participant of channel %d: %w", username, channelID, common.ErrInvalidState)
	}
	channel.removeParticipant(username)
	channel.addMod(username)
	return s.persist(ctx, channel)
}

// Demote moves a current mod back to the participant set.
func (s *Service) Demote(ctx context.Context, channelID int64, username string) error {
	channel, err := s.resolve(ctx, channelID, username)
	if err != nil {
		return err
	}
	if !channel.HasMod(username) {
		return fmt.Errorf("user %q is not a mod of channel %d: %w", username, channelID, common.ErrInvalidState)
	}
	channel.removeMod(username)
	channel.addParticipant(username)
	return s.persist(ctx, channel)
}
