package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ReviewRepository struct {
	*base.Repository
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{Repository: base.NewRepository(pool)}
}

const reviewColumns = `
	id, session_id, reviewer_id, reviewee_id, teacher_id, learner_id, overall_rating,
	communication_rating, knowledge_rating, punctuality_rating, review_text, what_learned,
	suggestions, would_recommend, is_anonymous, is_public, is_flagged, created_at, updated_at`

func scanReview(row interface{ Scan(...any) error }) (*model.SessionReview, error) {
	var rv model.SessionReview
	err := row.Scan(
		&rv.ID,
		&rv.SessionID,
		&rv.ReviewerID,
		&rv.RevieweeID,
		&rv.TeacherID,
		&rv.LearnerID,
		&rv.OverallRating,
		&rv.CommunicationRating,
		&rv.KnowledgeRating,
		&rv.PunctualityRating,
		&rv.ReviewText,
		&rv.WhatLearned,
		&rv.Suggestions,
		&rv.WouldRecommend,
		&rv.IsAnonymous,
		&rv.IsPublic,
		&rv.IsFlagged,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// Create создаёт отзыв; второй отзыв того же автора на сессию даёт ErrDuplicate
func (r *ReviewRepository) Create(ctx context.Context, rv *model.SessionReview) error {
	query := `
		INSERT INTO session_reviews (session_id, reviewer_id, reviewee_id, teacher_id, learner_id,
		                             overall_rating, communication_rating, knowledge_rating, punctuality_rating,
		                             review_text, what_learned, suggestions, would_recommend, is_anonymous, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		rv.SessionID,
		rv.ReviewerID,
		rv.RevieweeID,
		rv.TeacherID,
		rv.LearnerID,
		rv.OverallRating,
		rv.CommunicationRating,
		rv.KnowledgeRating,
		rv.PunctualityRating,
		rv.ReviewText,
		rv.WhatLearned,
		rv.Suggestions,
		rv.WouldRecommend,
		rv.IsAnonymous,
		rv.IsPublic,
	).Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

// Exists проверяет, оставлял ли пользователь отзыв на сессию
func (r *ReviewRepository) Exists(ctx context.Context, sessionID, reviewerID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM session_reviews WHERE session_id = $1 AND reviewer_id = $2)`

	var exists bool
	if err := r.QueryRow(ctx, query, sessionID, reviewerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check review exists: %w", err)
	}

	return exists, nil
}

// GetByID получает отзыв по ID
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*model.SessionReview, error) {
	query := `SELECT ` + reviewColumns + ` FROM session_reviews WHERE id = $1`

	rv, err := scanReview(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	return rv, nil
}

// Update обновляет содержимое отзыва
func (r *ReviewRepository) Update(ctx context.Context, rv *model.SessionReview) error {
	query := `
		UPDATE session_reviews
		SET overall_rating = $1, communication_rating = $2, knowledge_rating = $3, punctuality_rating = $4,
		    review_text = $5, what_learned = $6, suggestions = $7, would_recommend = $8,
		    is_anonymous = $9, is_public = $10, updated_at = now()
		WHERE id = $11
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		rv.OverallRating,
		rv.CommunicationRating,
		rv.KnowledgeRating,
		rv.PunctualityRating,
		rv.ReviewText,
		rv.WhatLearned,
		rv.Suggestions,
		rv.WouldRecommend,
		rv.IsAnonymous,
		rv.IsPublic,
		rv.ID,
	).Scan(&rv.UpdatedAt)

	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	return nil
}

func (r *ReviewRepository) list(ctx context.Context, column string, userID int64) ([]*model.SessionReview, error) {
	query := `SELECT ` + reviewColumns + ` FROM session_reviews WHERE ` + column + ` = $1 ORDER BY created_at DESC`

	rows, err := r.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*model.SessionReview
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

// ListByReviewer получает отзывы, оставленные пользователем
func (r *ReviewRepository) ListByReviewer(ctx context.Context, userID int64) ([]*model.SessionReview, error) {
	return r.list(ctx, "reviewer_id", userID)
}

// ListByReviewee получает отзывы о пользователе
func (r *ReviewRepository) ListByReviewee(ctx context.Context, userID int64) ([]*model.SessionReview, error) {
	return r.list(ctx, "reviewee_id", userID)
}

// StatsFor считает сессии и средние оценки пользователя по публичным отзывам
func (r *ReviewRepository) StatsFor(ctx context.Context, userID int64) (*model.ProfileStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM swap_sessions WHERE teacher_id = $1 AND status = 'completed'),
			(SELECT COUNT(*) FROM swap_sessions WHERE learner_id = $1 AND status = 'completed'),
			COALESCE(AVG(overall_rating) FILTER (WHERE teacher_id = $1), 0)::numeric(3,2),
			COALESCE(AVG(overall_rating) FILTER (WHERE learner_id = $1), 0)::numeric(3,2)
		FROM session_reviews
		WHERE reviewee_id = $1 AND is_public = TRUE
	`

	var (
		stats           model.ProfileStats
		asTeacher       decimal.Decimal
		asLearner       decimal.Decimal
		taught, learned int
	)
	err := r.QueryRow(ctx, query, userID).Scan(&taught, &learned, &asTeacher, &asLearner)
	if err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}

	stats.SessionsTaught = taught
	stats.SessionsLearned = learned
	stats.AverageRatingAsTeacher = asTeacher
	stats.AverageRatingAsLearner = asLearner

	return &stats, nil
}
