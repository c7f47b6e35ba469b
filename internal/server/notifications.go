package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListNotifications(c *gin.Context) {
	notifications, err := s.services.Notifications.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(notifications))
}

func (s *Server) handleUnreadCount(c *gin.Context) {
	count, err := s.services.Notifications.UnreadCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (s *Server) handleMarkRead(c *gin.Context) {
	id, ok := s.pathID(c, "notification")
	if !ok {
		return
	}
	if err := s.services.Notifications.MarkRead(c.Request.Context(), currentUserID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleMarkAllRead(c *gin.Context) {
	marked, err := s.services.Notifications.MarkAllRead(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// ============ Совпадения ============

func (s *Server) handleListMatches(c *gin.Context) {
	matches, err := s.services.Matches.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(matches))
}

func (s *Server) handleDismissMatch(c *gin.Context) {
	id, ok := s.pathID(c, "match")
	if !ok {
		return
	}
	if err := s.services.Matches.Dismiss(c.Request.Context(), currentUserID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
