package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/monitoring"
	"github.com/Freeeeeet/skill_swap/internal/repository"
	"go.uber.org/zap"
)

// ReviewInput holds the reviewer's ratings and feedback
type ReviewInput struct {
	OverallRating       int
	CommunicationRating int
	KnowledgeRating     int
	PunctualityRating   int
	ReviewText          string
	WhatLearned         string
	Suggestions         string
	WouldRecommend      bool
	IsAnonymous         bool
	IsPublic            bool
}

// validate проверяет диапазон оценок и обязательный текст для низкой оценки
func (in *ReviewInput) validate() error {
	fields := map[string]string{}
	ratings := []struct {
		name  string
		value int
	}{
		{"overall_rating", in.OverallRating},
		{"communication_rating", in.CommunicationRating},
		{"knowledge_rating", in.KnowledgeRating},
		{"punctuality_rating", in.PunctualityRating},
	}
	for _, r := range ratings {
		if r.value < model.MinRating || r.value > model.MaxRating {
			fields[r.name] = fmt.Sprintf("Rating must be between %d and %d.", model.MinRating, model.MaxRating)
		}
	}

	if in.OverallRating >= model.MinRating && in.OverallRating < model.LowRatingThreshold &&
		strings.TrimSpace(in.ReviewText) == "" {
		fields["review_text"] = "Please provide feedback for ratings below 3 stars."
	}

	if len(fields) > 0 {
		return apperrors.Validation("Invalid review.", fields)
	}
	return nil
}

func (in *ReviewInput) apply(rv *model.SessionReview) {
	rv.OverallRating = in.OverallRating
	rv.CommunicationRating = in.CommunicationRating
	rv.KnowledgeRating = in.KnowledgeRating
	rv.PunctualityRating = in.PunctualityRating
	rv.ReviewText = strings.TrimSpace(in.ReviewText)
	rv.WhatLearned = strings.TrimSpace(in.WhatLearned)
	rv.Suggestions = strings.TrimSpace(in.Suggestions)
	rv.WouldRecommend = in.WouldRecommend
	rv.IsAnonymous = in.IsAnonymous
	rv.IsPublic = in.IsPublic
}

type ReviewService struct {
	reviews  ReviewStore
	sessions SessionStore
	notifier Notifier
	logger   *zap.Logger
}

func NewReviewService(reviews ReviewStore, sessions SessionStore, notifier Notifier, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		sessions: sessions,
		notifier: notifier,
		logger:   logger,
	}
}

// Create оставляет отзыв о второй стороне сессии. Один отзыв на (сессию, автора).
func (s *ReviewService) Create(ctx context.Context, reviewerID, sessionID int64, in ReviewInput) (*model.SessionReview, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("session")
	}

	// Роли берутся из сессии, посторонний отзыв не оставит
	reviewee, ok := session.Counterpart(reviewerID)
	if !ok {
		return nil, apperrors.Authorization("Only session participants can leave a review.")
	}

	if err := in.validate(); err != nil {
		return nil, err
	}

	exists, err := s.reviews.Exists(ctx, session.ID, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("check review exists: %w", err)
	}
	if exists {
		return nil, apperrors.Validation("You have already reviewed this session.", nil)
	}

	rv := &model.SessionReview{
		SessionID:  session.ID,
		ReviewerID: reviewerID,
		RevieweeID: reviewee,
		TeacherID:  session.TeacherID,
		LearnerID:  session.LearnerID,
	}
	in.apply(rv)

	if err := s.reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("You have already reviewed this session.", nil)
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("Session review created",
		zap.Int64("review_id", rv.ID),
		zap.Int64("session_id", session.ID),
		zap.Int64("reviewer_id", reviewerID),
		zap.Int("overall_rating", rv.OverallRating),
	)
	monitoring.RecordReviewCreated(string(rv.ReviewerRole()))

	n := notification(model.NotificationNewReview, reviewee, reviewerID, rv.ID,
		"You received a new review", fmt.Sprintf("Overall rating: %d/5", rv.OverallRating))
	if rv.IsAnonymous {
		n.RelatedUserID = nil
	}
	s.notify(ctx, n)

	return rv, nil
}

// Update изменяет отзыв его автором; чужой отзыв не найден
func (s *ReviewService) Update(ctx context.Context, reviewerID, reviewID int64, in ReviewInput) (*model.SessionReview, error) {
	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if rv == nil || rv.ReviewerID != reviewerID {
		return nil, apperrors.NotFound("review")
	}

	if err := in.validate(); err != nil {
		return nil, err
	}
	in.apply(rv)

	if err := s.reviews.Update(ctx, rv); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.logger.Info("Session review updated", zap.Int64("review_id", rv.ID))
	return rv, nil
}

// ListGiven получает отзывы, оставленные пользователем
func (s *ReviewService) ListGiven(ctx context.Context, userID int64) ([]*model.SessionReview, error) {
	reviews, err := s.reviews.ListByReviewer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list given reviews: %w", err)
	}
	return reviews, nil
}

// ListReceived получает отзывы о пользователе. Автор анонимного отзыва скрыт.
func (s *ReviewService) ListReceived(ctx context.Context, userID int64) ([]*model.SessionReview, error) {
	reviews, err := s.reviews.ListByReviewee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list received reviews: %w", err)
	}
	for _, rv := range reviews {
		if rv.IsAnonymous {
			rv.Anonymize()
		}
	}
	return reviews, nil
}

func (s *ReviewService) notify(ctx context.Context, n *model.Notification) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, n)
	}
}
