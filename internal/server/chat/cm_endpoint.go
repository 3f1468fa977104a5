package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/prattle-chat/prattle/internal/common"
	"github.com/prattle-chat/prattle/internal/server/messages"
)

// CMEndpoint is the per-connection state machine of a channel
// conversation. Every member connected to the same channel shares one
// subject.
type CMEndpoint struct {
	endpoint
	self      string
	channelID int64
}

func NewCMEndpoint(deps Deps, sender Sender, self string, channelID int64) *CMEndpoint {
	return &CMEndpoint{
		endpoint:  newEndpoint(deps, sender, "cm"),
		self:      self,
		channelID: channelID,
	}
}

// Open validates the connecting user and the target channel, then attaches
// the endpoint to the channel conversation. Either lookup failing delivers
// one local error message and leaves the endpoint out of Active.
func (e *CMEndpoint) Open(ctx context.Context) {
	if !e.resolveUser(ctx, e.self) {
		return
	}

	if _, err := e.deps.Channels.GetByID(ctx, e.channelID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			e.sendLocal(ctx, fmt.Sprintf("Channel %d could not be found", e.channelID))
			return
		}
		e.logger.Error(ctx, "storage error resolving channel on open", "channel_id", e.channelID, "error", err)
		e.sendLocal(ctx, fmt.Sprintf("Storage error: %v", err))
		return
	}

	e.activate(e.deps.Registry.ForChannel(e.channelID))
	e.logger.Info(ctx, "channel conversation opened", "self", e.self, "channel_id", e.channelID)
}

// HandleMessage tags an inbound message with the channel identity and a
// server-side timestamp, persists it and broadcasts it to every connected
// member. Messages arriving while the endpoint is not Active are dropped.
func (e *CMEndpoint) HandleMessage(ctx context.Context, msg *messages.Message) {
	if e.State() != Active {
		e.logger.Warn(ctx, "message on inactive cm endpoint dropped", "state", e.State().String())
		return
	}

	msg.FromUsername = e.self
	channelID := e.channelID
	msg.ToChannelID = &channelID
	msg.ToUsername = nil

	e.persistAndPublish(ctx, msg, e.self)
}

// Close detaches the endpoint from the conversation. Terminal.
func (e *CMEndpoint) Close() {
	e.close()
}
