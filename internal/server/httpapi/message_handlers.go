package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) directMessagesFrom(c *gin.Context) {
	list, err := s.messages.ByFrom(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) directMessagesTo(c *gin.Context) {
	list, err := s.messages.ByTo(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) directMessagesBetween(c *gin.Context) {
	list, err := s.messages.Between(c.Request.Context(), c.Param("username1"), c.Param("username2"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) channelMessages(c *gin.Context) {
	id, ok := channelID(c)
	if !ok {
		return
	}
	list, err := s.messages.ByChannel(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
