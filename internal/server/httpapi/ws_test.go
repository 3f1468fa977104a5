package httpapi

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prattle-chat/prattle/internal/logging"
	"github.com/prattle-chat/prattle/internal/server/channels"
	"github.com/prattle-chat/prattle/internal/server/chat"
	"github.com/prattle-chat/prattle/internal/server/messages"
	"github.com/prattle-chat/prattle/internal/server/users"
)

type wsTestEnv struct {
	server   *httptest.Server
	registry *chat.Registry
	users    *users.Service
	channels *channels.Service
}

func newWSTestEnv(t *testing.T) *wsTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logging.NewJSON(io.Discard)

	userRepo := users.NewInMemoryRepository()
	userSvc := users.NewService(userRepo, logger, 24*time.Hour)
	channelSvc := channels.NewService(channels.NewInMemoryRepository(), userRepo, logger)
	messageSvc := messages.NewService(messages.NewInMemoryRepository(), logger)
	registry := chat.NewRegistry(logger)

	deps := chat.Deps{
		Registry: registry,
		Users:    userSvc,
		Channels: channelSvc,
		Messages: messageSvc,
		Logger:   logger,
		Clock:    time.Now,
	}

	srv := httptest.NewServer(NewServer(userSvc, channelSvc, messageSvc, deps, logger).Router())
	t.Cleanup(srv.Close)

	return &wsTestEnv{server: srv, registry: registry, users: userSvc, channels: channelSvc}
}

func (env *wsTestEnv) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	return conn
}

func waitForObservers(t *testing.T, subject *chat.Subject, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if subject.ObserverCount() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d observers, have %d", want, subject.ObserverCount())
}

func TestWS_DirectMessageRoundTrip(t *testing.T) {
	env := newWSTestEnv(t)
	ctx := context.Background()
	_, err := env.users.Create(ctx, &users.User{Username: "u0", Password: "pw"})
	require.NoError(t, err)
	_, err = env.users.Create(ctx, &users.User{Username: "u1", Password: "pw"})
	require.NoError(t, err)

	conn0 := env.dial(t, "/ws/dm/u1/u0")
	conn1 := env.dial(t, "/ws/dm/u0/u1")
	waitForObservers(t, env.registry.ForPair("u0", "u1"), 2)

	require.NoError(t, conn0.WriteJSON(map[string]string{"content": "hi"}))

	for _, conn := range []*websocket.Conn{conn0, conn1} {
		var got messages.Message
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "hi", got.Content)
		assert.Equal(t, "u0", got.FromUsername)
		require.NotNil(t, got.ToUsername)
		assert.Equal(t, "u1", *got.ToUsername)
		assert.NotNil(t, got.Timestamp)
	}
}

func TestWS_UnknownUserGetsErrorMessage(t *testing.T) {
	env := newWSTestEnv(t)
	ctx := context.Background()
	_, err := env.users.Create(ctx, &users.User{Username: "u1", Password: "pw"})
	require.NoError(t, err)

	conn := env.dial(t, "/ws/dm/u1/ghost")

	var got messages.Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "User ghost could not be found", got.Content)
	assert.Equal(t, 0, env.registry.Len())
}

func TestWS_ChannelBroadcast(t *testing.T) {
	env := newWSTestEnv(t)
	ctx := context.Background()
	for _, name := range []string{"alice", "bob"} {
		_, err := env.users.Create(ctx, &users.User{Username: name, Password: "pw"})
		require.NoError(t, err)
	}
	channel, err := env.channels.Create(ctx, "general", []string{"alice", "bob"}, nil)
	require.NoError(t, err)

	connA := env.dial(t, "/ws/cm/1/alice")
	connB := env.dial(t, "/ws/cm/1/bob")
	waitForObservers(t, env.registry.ForChannel(channel.ID), 2)

	require.NoError(t, connA.WriteJSON(map[string]string{"content": "standup"}))

	for _, conn := range []*websocket.Conn{connA, connB} {
		var got messages.Message
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "standup", got.Content)
		require.NotNil(t, got.ToChannelID)
		assert.Equal(t, channel.ID, *got.ToChannelID)
	}
}

// clientObserver delivers broadcasts through a wsClient, as the chat
// endpoints do.
type clientObserver struct {
	client *wsClient
}

func (o *clientObserver) Deliver(msg *messages.Message) error {
	return o.client.Send(msg)
}

type countingObserver struct {
	delivered int
}

func (o *countingObserver) Deliver(msg *messages.Message) error {
	o.delivered++
	return nil
}

func TestWS_SendAfterTeardownFailsWithoutPanic(t *testing.T) {
	client := newWSClient(nil, logging.NewJSON(io.Discard))
	client.shutdown()
	client.shutdown() // idempotent

	err := client.Send(&messages.Message{Content: "late"})
	require.Error(t, err)
}

func TestWS_PublishRacingDisconnectStillReachesOthers(t *testing.T) {
	logger := logging.NewJSON(io.Discard)
	subject := chat.NewSubject(logger)

	gone := &clientObserver{client: newWSClient(nil, logger)}
	remaining := &countingObserver{}
	subject.Attach(gone)
	subject.Attach(remaining)

	// Peer tears down after the broadcaster snapshots the observer list.
	gone.client.shutdown()

	require.NotPanics(t, func() {
		subject.Publish(context.Background(), &messages.Message{Content: "hi"})
	})
	assert.Equal(t, 1, remaining.delivered)
}

func TestWS_UnknownChannelGetsErrorMessage(t *testing.T) {
	env := newWSTestEnv(t)
	ctx := context.Background()
	_, err := env.users.Create(ctx, &users.User{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	conn := env.dial(t, "/ws/cm/42/alice")

	var got messages.Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "Channel 42 could not be found", got.Content)
}
