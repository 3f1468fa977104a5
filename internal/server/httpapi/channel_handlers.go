package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func channelID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("channel_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel_id must be an integer"})
		return 0, false
	}
	return id, true
}

type createChannelRequest struct {
	Name         string   `json:"name" binding:"required"`
	Participants []string `json:"participants"`
	Mods         []string `json:"mods"`
}

func (s *Server) createChannel(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := s.channels.Create(c.Request.Context(), req.Name, req.Participants, req.Mods)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, channel)
}

func (s *Server) listChannels(c *gin.Context) {
	list, err := s.channels.ListAll(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getChannel(c *gin.Context) {
	id, ok := channelID(c)
	if !ok {
		return
	}
	channel, err := s.channels.GetByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

func (s *Server) deleteChannel(c *gin.Context) {
	id, ok := channelID(c)
	if !ok {
		return
	}
	if err := s.channels.Remove(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addParticipant(c *gin.Context) {
	s.membershipChange(c, s.channels.AddParticipant)
}

func (s *Server) removeParticipant(c *gin.Context) {
	s.membershipChange(c, s.channels.RemoveParticipant)
}

func (s *Server) promoteMod(c *gin.Context) {
	s.membershipChange(c, s.channels.Promote)
}

func (s *Server) demoteMod(c *gin.Context) {
	s.membershipChange(c, s.channels.Demote)
}

func (s *Server) membershipChange(c *gin.Context, apply func(ctx context.Context, channelID int64, username string) error) {
	id, ok := channelID(c)
	if !ok {
		return
	}
	if err := apply(c.Request.Context(), id, c.Param("username")); err != nil {
		s.writeError(c, err)
		return
	}

	channel, err := s.channels.GetByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}
