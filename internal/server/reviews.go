package server

import (
	"net/http"

	"github.com/Freeeeeet/skill_swap/internal/service"
	"github.com/gin-gonic/gin"
)

type reviewBody struct {
	OverallRating       int    `json:"overall_rating"`
	CommunicationRating int    `json:"communication_rating"`
	KnowledgeRating     int    `json:"knowledge_rating"`
	PunctualityRating   int    `json:"punctuality_rating"`
	ReviewText          string `json:"review_text"`
	WhatLearned         string `json:"what_learned"`
	Suggestions         string `json:"suggestions"`
	WouldRecommend      *bool  `json:"would_recommend"`
	IsAnonymous         bool   `json:"is_anonymous"`
	IsPublic            *bool  `json:"is_public"`
}

// input: would_recommend и is_public по умолчанию true
func (b reviewBody) input() service.ReviewInput {
	in := service.ReviewInput{
		OverallRating:       b.OverallRating,
		CommunicationRating: b.CommunicationRating,
		KnowledgeRating:     b.KnowledgeRating,
		PunctualityRating:   b.PunctualityRating,
		ReviewText:          b.ReviewText,
		WhatLearned:         b.WhatLearned,
		Suggestions:         b.Suggestions,
		WouldRecommend:      true,
		IsAnonymous:         b.IsAnonymous,
		IsPublic:            true,
	}
	if b.WouldRecommend != nil {
		in.WouldRecommend = *b.WouldRecommend
	}
	if b.IsPublic != nil {
		in.IsPublic = *b.IsPublic
	}
	return in
}

func (s *Server) handleCreateReview(c *gin.Context) {
	sessionID, ok := s.pathID(c, "session")
	if !ok {
		return
	}
	var body reviewBody
	if !s.bindJSON(c, &body) {
		return
	}

	review, err := s.services.Reviews.Create(c.Request.Context(), currentUserID(c), sessionID, body.input())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (s *Server) handleUpdateReview(c *gin.Context) {
	id, ok := s.pathID(c, "review")
	if !ok {
		return
	}
	var body reviewBody
	if !s.bindJSON(c, &body) {
		return
	}

	review, err := s.services.Reviews.Update(c.Request.Context(), currentUserID(c), id, body.input())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (s *Server) handleListGivenReviews(c *gin.Context) {
	reviews, err := s.services.Reviews.ListGiven(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(reviews))
}

func (s *Server) handleListReceivedReviews(c *gin.Context) {
	reviews, err := s.services.Reviews.ListReceived(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(reviews))
}
