// Package httpapi exposes the REST and websocket surface: user, channel
// and message-log CRUD over gin, and the realtime conversation endpoints
// over gorilla websockets.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/prattle-chat/prattle/internal/common"
	"github.com/prattle-chat/prattle/internal/logging"
	"github.com/prattle-chat/prattle/internal/server/channels"
	"github.com/prattle-chat/prattle/internal/server/chat"
	"github.com/prattle-chat/prattle/internal/server/messages"
	"github.com/prattle-chat/prattle/internal/server/users"
)

// Server binds the domain services to HTTP routes.
type Server struct {
	users    *users.Service
	channels *channels.Service
	messages *messages.Service
	chatDeps chat.Deps
	logger   logging.Logger
}

func NewServer(userSvc *users.Service, channelSvc *channels.Service, messageSvc *messages.Service, chatDeps chat.Deps, logger logging.Logger) *Server {
	return &Server{
		users:    userSvc,
		channels: channelSvc,
		messages: messageSvc,
		chatDeps: chatDeps,
		logger:   logger.With("component", "httpapi"),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	user := router.Group("/user")
	{
		user.POST("/create", s.createUser)
		user.POST("/login", s.login)
		user.POST("/update", s.updateUser)
		user.GET("/all", s.listUsers)
		user.GET("/active", s.listActiveUsers)
		user.GET("/:username", s.getUser)
		user.GET("/:username/channels", s.userChannels)
		user.DELETE("/:username", s.deactivateUser)
	}

	channel := router.Group("/channel")
	{
		channel.POST("/create", s.createChannel)
		channel.GET("/all", s.listChannels)
		channel.GET("/:channel_id", s.getChannel)
		channel.DELETE("/:channel_id", s.deleteChannel)
		channel.PUT("/:channel_id/user/:username", s.addParticipant)
		channel.DELETE("/:channel_id/user/:username", s.removeParticipant)
		channel.PUT("/:channel_id/mod/:username", s.promoteMod)
		channel.DELETE("/:channel_id/mod/:username", s.demoteMod)
	}

	dm := router.Group("/dm")
	{
		dm.GET("/from/:username", s.directMessagesFrom)
		dm.GET("/to/:username", s.directMessagesTo)
		dm.GET("/between/:username1/:username2", s.directMessagesBetween)
	}

	router.GET("/cm/from/:channel_id/all", s.channelMessages)

	ws := router.Group("/ws")
	{
		ws.GET("/dm/:to_username/:username", s.serveDM)
		ws.GET("/cm/:channel_id/:username", s.serveCM)
	}

	return router
}

// writeError maps a domain error onto the HTTP status contract: 404 for
// missing entities, 409 for duplicates, 423 for locked accounts, 401 for a
// bad credential, 400 for an invalid state transition, 500 for storage
// failures.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, common.ErrLockedOut):
		status = http.StatusLocked
	case errors.Is(err, common.ErrBadCredential):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrInvalidState):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
