package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prattle-chat/prattle/internal/server/users"
)

// generalChannelID is the channel every new account joins on creation.
const generalChannelID = 1

func (s *Server) createUser(c *gin.Context) {
	var user users.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := s.users.Create(c.Request.Context(), &user)
	if err != nil {
		s.writeError(c, err)
		return
	}

	// New accounts land in the general channel. Best effort: a missing
	// general channel does not fail the signup.
	if err := s.channels.AddParticipant(c.Request.Context(), generalChannelID, created.Username); err != nil {
		s.logger.Warn(c.Request.Context(), "could not add new user to general channel",
			"username", created.Username, "error", err)
	}

	created.Password = ""
	c.JSON(http.StatusCreated, created)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.users.Login(c.Request.Context(), req.Username, req.Password); err != nil {
		s.writeError(c, err)
		return
	}

	user, err := s.users.FindByName(c.Request.Context(), req.Username)
	if err != nil {
		s.writeError(c, err)
		return
	}
	user.Password = ""
	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	Username string `json:"username" binding:"required"`
	users.ProfileUpdate
}

func (s *Server) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.users.UpdateProfile(c.Request.Context(), req.Username, req.ProfileUpdate); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listUsers(c *gin.Context) {
	list, err := s.users.ListAll(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	stripPasswords(list)
	c.JSON(http.StatusOK, list)
}

func (s *Server) listActiveUsers(c *gin.Context) {
	list, err := s.users.ListActive(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	stripPasswords(list)
	c.JSON(http.StatusOK, list)
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.users.FindByName(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	user.Password = ""
	c.JSON(http.StatusOK, user)
}

func (s *Server) userChannels(c *gin.Context) {
	list, err := s.channels.ChannelsForUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) deactivateUser(c *gin.Context) {
	if err := s.users.Deactivate(c.Request.Context(), c.Param("username")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func stripPasswords(list []users.User) {
	for i := range list {
		list[i].Password = ""
	}
}
