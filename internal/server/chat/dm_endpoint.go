package chat

import (
	"context"

	"github.com/prattle-chat/prattle/internal/server/messages"
)

// DMEndpoint is the per-connection state machine of a direct-message
// conversation. One exists per open connection; both ends of the same pair
// share one subject.
type DMEndpoint struct {
	endpoint
	self string
	peer string
}

func NewDMEndpoint(deps Deps, sender Sender, self, peer string) *DMEndpoint {
	return &DMEndpoint{
		endpoint: newEndpoint(deps, sender, "dm"),
		self:     self,
		peer:     peer,
	}
}

// Open validates the connecting user and attaches the endpoint to the pair
// conversation. On a failed validation the endpoint delivers one local
// error message and never becomes Active.
func (e *DMEndpoint) Open(ctx context.Context) {
	if !e.resolveUser(ctx, e.self) {
		return
	}

	e.activate(e.deps.Registry.ForPair(e.self, e.peer))
	e.logger.Info(ctx, "dm conversation opened", "self", e.self, "peer", e.peer)
}

// HandleMessage tags an inbound message with the conversation identity and
// a server-side timestamp, persists it and broadcasts it to both ends.
// Messages arriving while the endpoint is not Active are dropped.
func (e *DMEndpoint) HandleMessage(ctx context.Context, msg *messages.Message) {
	if e.State() != Active {
		e.logger.Warn(ctx, "message on inactive dm endpoint dropped", "state", e.State().String())
		return
	}

	msg.FromUsername = e.self
	peer := e.peer
	msg.ToUsername = &peer
	msg.ToChannelID = nil

	e.persistAndPublish(ctx, msg, e.self)
}

// Close detaches the endpoint from the conversation. Terminal.
func (e *DMEndpoint) Close() {
	e.close()
}
