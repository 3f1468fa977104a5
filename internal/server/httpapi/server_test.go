package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prattle-chat/prattle/internal/logging"
	"github.com/prattle-chat/prattle/internal/server/channels"
	"github.com/prattle-chat/prattle/internal/server/chat"
	"github.com/prattle-chat/prattle/internal/server/messages"
	"github.com/prattle-chat/prattle/internal/server/users"
)

type testServer struct {
	router   *gin.Engine
	users    *users.Service
	channels *channels.Service
	messages *messages.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logging.NewJSON(io.Discard)

	userRepo := users.NewInMemoryRepository()
	userSvc := users.NewService(userRepo, logger, 24*time.Hour)
	channelSvc := channels.NewService(channels.NewInMemoryRepository(), userRepo, logger)
	messageSvc := messages.NewService(messages.NewInMemoryRepository(), logger)

	deps := chat.Deps{
		Registry: chat.NewRegistry(logger),
		Users:    userSvc,
		Channels: channelSvc,
		Messages: messageSvc,
		Logger:   logger,
		Clock:    time.Now,
	}

	srv := NewServer(userSvc, channelSvc, messageSvc, deps, logger)
	return &testServer{
		router:   srv.Router(),
		users:    userSvc,
		channels: channelSvc,
		messages: messageSvc,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) addUser(t *testing.T, username string) {
	t.Helper()
	_, err := ts.users.Create(context.Background(), &users.User{Username: username, Password: "pw"})
	require.NoError(t, err)
}

func TestCreateUser(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/user/create", map[string]string{
		"username": "alice",
		"password": "secret",
		"email":    "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var body users.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Username)
	assert.Empty(t, body.Password)
	assert.True(t, body.Active)
}

func TestCreateUser_Duplicate(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "alice")

	rec := ts.do(t, http.MethodPost, "/user/create", map[string]string{
		"username": "alice",
		"password": "other",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateUser_JoinsGeneralChannel(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "founder")
	general, err := ts.channels.Create(context.Background(), "general", []string{"founder"}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(generalChannelID), general.ID)

	rec := ts.do(t, http.MethodPost, "/user/create", map[string]string{
		"username": "alice",
		"password": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	got, err := ts.channels.GetByID(context.Background(), generalChannelID)
	require.NoError(t, err)
	assert.True(t, got.HasParticipant("alice"))
}

func TestCreateUser_NoGeneralChannelStillSucceeds(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/user/create", map[string]string{
		"username": "alice",
		"password": "secret",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestLogin_StatusMapping(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "alice")

	rec := ts.do(t, http.MethodPost, "/user/login", map[string]string{"username": "alice", "password": "pw"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/user/login", map[string]string{"username": "nobody", "password": "pw"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/user/login", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_LockedAccountReturns423(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "alice")

	for i := 0; i < 4; i++ {
		rec := ts.do(t, http.MethodPost, "/user/login", map[string]string{"username": "alice", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := ts.do(t, http.MethodPost, "/user/login", map[string]string{"username": "alice", "password": "pw"})
	assert.Equal(t, http.StatusLocked, rec.Code)
}

func TestUpdateUser(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "alice")

	rec := ts.do(t, http.MethodPost, "/user/update", map[string]any{
		"username": "alice",
		"bio":      "hello there",
		"avatar":   7,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	user, err := ts.users.FindByName(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "hello there", user.Bio)
	assert.Equal(t, 7, user.Avatar)
}

func TestUpdateUser_Unknown(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/user/update", map[string]any{
		"username": "ghost",
		"bio":      "boo",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeactivateUser_FiltersActiveList(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "alice")
	ts.addUser(t, "bob")

	rec := ts.do(t, http.MethodDelete, "/user/bob", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/user/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var active []users.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	require.Len(t, active, 1)
	assert.Equal(t, "alice", active[0].Username)

	rec = ts.do(t, http.MethodGet, "/user/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []users.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)
}

func TestGetUser_PasswordNeverSerialized(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "alice")

	rec := ts.do(t, http.MethodGet, "/user/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pw")
}

func TestCreateChannel_DropsUnknownUsernames(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "alice")
	ts.addUser(t, "bob")

	rec := ts.do(t, http.MethodPost, "/channel/create", map[string]any{
		"name":         "random",
		"participants": []string{"alice", "ghost"},
		"mods":         []string{"bob"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var channel channels.Channel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &channel))
	assert.Equal(t, []string{"alice"}, channel.Participants)
	assert.Equal(t, []string{"bob"}, channel.Mods)
}

func TestGetChannel_Unknown(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/channel/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/channel/notanumber", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChannelMembershipRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "alice")
	ts.addUser(t, "bob")
	general, err := ts.channels.Create(context.Background(), "general", []string{"alice"}, nil)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPut, "/channel/1/user/bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPut, "/channel/1/mod/bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var channel channels.Channel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &channel))
	assert.True(t, channel.HasMod("bob"))
	assert.False(t, channel.HasParticipant("bob"))

	rec = ts.do(t, http.MethodDelete, "/channel/1/mod/bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &channel))
	assert.True(t, channel.HasParticipant("bob"))

	rec = ts.do(t, http.MethodDelete, "/channel/1/user/bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := ts.channels.GetByID(context.Background(), general.ID)
	require.NoError(t, err)
	assert.False(t, got.HasParticipant("bob"))
	assert.False(t, got.HasMod("bob"))
}

func TestPromote_NonParticipantIsBadRequest(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "alice")
	ts.addUser(t, "bob")
	_, err := ts.channels.Create(context.Background(), "general", []string{"alice"}, nil)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPut, "/channel/1/mod/bob", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserChannels(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "alice")
	ts.addUser(t, "bob")
	_, err := ts.channels.Create(context.Background(), "general", []string{"alice", "bob"}, nil)
	require.NoError(t, err)
	_, err = ts.channels.Create(context.Background(), "mods-only", nil, []string{"alice"})
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/user/alice/channels", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []channels.Channel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = ts.do(t, http.MethodGet, "/user/bob/channels", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestMessageQueries(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	to := "bob"
	channelID := int64(1)
	now := time.Now()
	_, err := ts.messages.Add(ctx, &messages.Message{FromUsername: "alice", ToUsername: &to, Content: "hi", Timestamp: &now})
	require.NoError(t, err)
	later := now.Add(time.Minute)
	_, err = ts.messages.Add(ctx, &messages.Message{FromUsername: "bob", ToChannelID: &channelID, Content: "all hands", Timestamp: &later})
	require.NoError(t, err)

	var list []messages.Message

	rec := ts.do(t, http.MethodGet, "/dm/from/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "hi", list[0].Content)

	rec = ts.do(t, http.MethodGet, "/dm/to/bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = ts.do(t, http.MethodGet, "/dm/between/bob/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = ts.do(t, http.MethodGet, "/cm/from/1/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "all hands", list[0].Content)
}

func TestDeleteChannel(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "alice")
	_, err := ts.channels.Create(context.Background(), "ephemeral", []string{"alice"}, nil)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodDelete, "/channel/1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/channel/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
