package server

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/service"
	"github.com/gin-gonic/gin"
)

type rescheduleBody struct {
	ScheduledDate   time.Time           `json:"scheduled_date"`
	DurationMinutes int                 `json:"duration_minutes"`
	Format          model.SessionFormat `json:"format"`
	Location        string              `json:"location"`
	MeetingLink     string              `json:"meeting_link"`
}

type notesBody struct {
	Notes   string  `json:"notes"`
	Summary *string `json:"session_summary"`
}

// handleListSessions: ?scope=upcoming|history, без scope все сессии
func (s *Server) handleListSessions(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	var (
		sessions []*model.SwapSession
		err      error
	)
	switch c.Query("scope") {
	case "":
		sessions, err = s.services.Sessions.List(ctx, userID)
	case "upcoming":
		sessions, err = s.services.Sessions.ListUpcoming(ctx, userID)
	case "history":
		sessions, err = s.services.Sessions.ListHistory(ctx, userID)
	default:
		err = apperrors.Validation("Invalid scope.", map[string]string{"scope": "Use upcoming or history."})
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(sessions))
}

func (s *Server) handleGetSession(c *gin.Context) {
	id, ok := s.pathID(c, "session")
	if !ok {
		return
	}
	session, err := s.services.Sessions.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type sessionTransition func(ctx context.Context, actorID, sessionID int64) (*model.SwapSession, error)

func (s *Server) transitionSession(c *gin.Context, transition sessionTransition) {
	id, ok := s.pathID(c, "session")
	if !ok {
		return
	}
	session, err := transition(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleStartSession(c *gin.Context) {
	s.transitionSession(c, s.services.Sessions.Start)
}

func (s *Server) handleEndSession(c *gin.Context) {
	s.transitionSession(c, s.services.Sessions.End)
}

func (s *Server) handleCancelSession(c *gin.Context) {
	s.transitionSession(c, s.services.Sessions.Cancel)
}

func (s *Server) handleNoShowSession(c *gin.Context) {
	s.transitionSession(c, s.services.Sessions.MarkNoShow)
}

func (s *Server) handleRescheduleSession(c *gin.Context) {
	id, ok := s.pathID(c, "session")
	if !ok {
		return
	}
	var body rescheduleBody
	if !s.bindJSON(c, &body) {
		return
	}

	session, err := s.services.Sessions.Reschedule(c.Request.Context(), currentUserID(c), id, service.RescheduleInput{
		ScheduledDate:   body.ScheduledDate,
		DurationMinutes: body.DurationMinutes,
		Format:          body.Format,
		Location:        body.Location,
		MeetingLink:     body.MeetingLink,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleUpdateNotes(c *gin.Context) {
	id, ok := s.pathID(c, "session")
	if !ok {
		return
	}
	var body notesBody
	if !s.bindJSON(c, &body) {
		return
	}

	session, err := s.services.Sessions.UpdateNotes(c.Request.Context(), currentUserID(c), id, service.NotesInput{
		Notes:   body.Notes,
		Summary: body.Summary,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
