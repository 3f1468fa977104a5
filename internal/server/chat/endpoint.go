package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prattle-chat/prattle/internal/common"
	"github.com/prattle-chat/prattle/internal/logging"
	"github.com/prattle-chat/prattle/internal/server/channels"
	"github.com/prattle-chat/prattle/internal/server/messages"
	"github.com/prattle-chat/prattle/internal/server/users"
)

// State is the lifecycle of a connection endpoint. Closed is terminal.
type State int

const (
	Opening State = iota
	Active
	Closed
)

func (s State) String() string {
	switch s {
	case Opening:
		return "opening"
	case Active:
		return "active"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sender abstracts the wire of one connection. The websocket layer
// implements it by queueing the encoded message on the connection's send
// channel; tests implement it with in-memory fakes.
type Sender interface {
	Send(msg *messages.Message) error
}

// Deps bundles the collaborators shared by all endpoints of a process.
// Clock returns the wall-clock time used to stamp inbound messages; the
// application configures it with a zone-aware clock.
type Deps struct {
	Registry *Registry
	Users    *users.Service
	Channels *channels.Service
	Messages *messages.Service
	Logger   logging.Logger
	Clock    func() time.Time
}

// endpoint carries the state shared by DM and channel endpoints: the
// connection id, the wire, the attached subject and the lifecycle state.
type endpoint struct {
	id     string
	deps   Deps
	sender Sender
	logger logging.Logger

	mu      sync.Mutex
	state   State
	subject *Subject
}

func newEndpoint(deps Deps, sender Sender, kind string) endpoint {
	id := uuid.NewString()
	return endpoint{
		id:     id,
		deps:   deps,
		sender: sender,
		logger: deps.Logger.With("component", "chat", "endpoint", kind, "conn_id", id),
		state:  Opening,
	}
}

// State reports the endpoint's current lifecycle state.
func (e *endpoint) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Deliver implements Observer by pushing the broadcast message over this
// endpoint's connection.
func (e *endpoint) Deliver(msg *messages.Message) error {
	return e.sender.Send(msg)
}

// sendLocal delivers an error notice to this connection only, without
// touching the conversation subject.
func (e *endpoint) sendLocal(ctx context.Context, content string) {
	if err := e.sender.Send(&messages.Message{Content: content}); err != nil {
		e.logger.Error(ctx, "failed to send local error message", "error", err)
	}
}

// activate attaches the endpoint to its subject and transitions it to
// Active.
func (e *endpoint) activate(subject *Subject) {
	e.mu.Lock()
	e.subject = subject
	e.state = Active
	e.mu.Unlock()
	subject.Attach(e)
}

// close detaches from the subject (when attached) and transitions to
// Closed. Safe to call in any state; Closed is terminal.
func (e *endpoint) close() {
	e.mu.Lock()
	subject := e.subject
	e.subject = nil
	e.state = Closed
	e.mu.Unlock()

	if subject != nil {
		subject.Detach(e)
	}
}

// resolveUser looks up the endpoint's own account on open. A missing
// account or a storage failure produces a single locally-scoped error
// message and leaves the endpoint out of Active; the connection itself
// stays up.
func (e *endpoint) resolveUser(ctx context.Context, username string) bool {
	_, err := e.deps.Users.FindByName(ctx, username)
	if err == nil {
		return true
	}
	if errors.Is(err, common.ErrNotFound) {
		e.sendLocal(ctx, fmt.Sprintf("User %s could not be found", username))
		return false
	}
	e.logger.Error(ctx, "storage error resolving user on open", "username", username, "error", err)
	e.sendLocal(ctx, fmt.Sprintf("Storage error: %v", err))
	return false
}

// persistAndPublish stamps the message timestamp, appends it to the
// message log, resolves the participant avatars best-effort, and broadcasts to
// the conversation. Storage failures abort the broadcast and surface as a
// local error message.
func (e *endpoint) persistAndPublish(ctx context.Context, msg *messages.Message, sender string) {
	now := e.deps.Clock()
	msg.Timestamp = &now

	if _, err := e.deps.Messages.Add(ctx, msg); err != nil {
		e.logger.Error(ctx, "failed to persist message", "error", err)
		e.sendLocal(ctx, fmt.Sprintf("Storage error: %v", err))
		return
	}

	if user, err := e.deps.Users.FindByName(ctx, sender); err == nil {
		avatar := user.Avatar
		msg.FromAvatar = &avatar
	}
	if msg.ToUsername != nil {
		if user, err := e.deps.Users.FindByName(ctx, *msg.ToUsername); err == nil {
			avatar := user.Avatar
			msg.ToAvatar = &avatar
		}
	}

	e.mu.Lock()
	subject := e.subject
	e.mu.Unlock()
	subject.Publish(ctx, msg)
}
