package server

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/service"
	"github.com/gin-gonic/gin"
)

type createRequestBody struct {
	RecipientID      int64               `json:"recipient_id"`
	OfferedSkillID   int64               `json:"offered_skill_id"`
	DesiredSkillID   *int64              `json:"desired_skill_id"`
	Message          string              `json:"message"`
	ProposedDuration int                 `json:"proposed_duration"`
	ProposedFormat   model.SessionFormat `json:"proposed_format"`
	ProposedLocation string              `json:"proposed_location"`
}

type respondBody struct {
	Action        service.ResponseAction `json:"action"`
	Message       string                 `json:"message"`
	ScheduledDate *time.Time             `json:"scheduled_date"`
	Location      string                 `json:"location"`
}

type respondResponse struct {
	Request *model.SwapRequest `json:"request"`
	Session *model.SwapSession `json:"session,omitempty"`
}

func (s *Server) handleCreateRequest(c *gin.Context) {
	var body createRequestBody
	if !s.bindJSON(c, &body) {
		return
	}

	req, err := s.services.Requests.Create(c.Request.Context(), currentUserID(c), service.CreateRequestInput{
		RecipientID:      body.RecipientID,
		OfferedSkillID:   body.OfferedSkillID,
		DesiredSkillID:   body.DesiredSkillID,
		Message:          body.Message,
		ProposedDuration: body.ProposedDuration,
		ProposedFormat:   body.ProposedFormat,
		ProposedLocation: body.ProposedLocation,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (s *Server) handleListSentRequests(c *gin.Context) {
	requests, err := s.services.Requests.ListSent(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(requests))
}

func (s *Server) handleListReceivedRequests(c *gin.Context) {
	requests, err := s.services.Requests.ListReceived(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(requests))
}

func (s *Server) handleGetRequest(c *gin.Context) {
	id, ok := s.pathID(c, "request")
	if !ok {
		return
	}
	req, err := s.services.Requests.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (s *Server) handleRespondRequest(c *gin.Context) {
	id, ok := s.pathID(c, "request")
	if !ok {
		return
	}
	var body respondBody
	if !s.bindJSON(c, &body) {
		return
	}

	req, session, err := s.services.Requests.Respond(c.Request.Context(), currentUserID(c), id, service.RespondInput{
		Action:        body.Action,
		Message:       body.Message,
		ScheduledDate: body.ScheduledDate,
		Location:      body.Location,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, respondResponse{Request: req, Session: session})
}

func (s *Server) handleCancelRequest(c *gin.Context) {
	id, ok := s.pathID(c, "request")
	if !ok {
		return
	}
	req, err := s.services.Requests.Cancel(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// listOf оборачивает список, чтобы пустой ответ был [] а не null
func listOf[T any](items []T) gin.H {
	if items == nil {
		items = []T{}
	}
	return gin.H{"results": items, "count": len(items)}
}
