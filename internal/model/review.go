package model

import "time"

const (
	MinRating = 1
	MaxRating = 5

	// LowRatingThreshold: ниже этого значения нужен текст отзыва
	LowRatingThreshold = 3
)

// SessionReview is one participant's feedback on a session.
// Teacher and learner are copied from the session so the roles never get re-derived.
type SessionReview struct {
	ID                  int64     `json:"id"`
	SessionID           int64     `json:"session_id"`
	ReviewerID          int64     `json:"reviewer_id"`
	RevieweeID          int64     `json:"reviewee_id"`
	TeacherID           int64     `json:"teacher_id"`
	LearnerID           int64     `json:"learner_id"`
	OverallRating       int       `json:"overall_rating"`
	CommunicationRating int       `json:"communication_rating"`
	KnowledgeRating     int       `json:"knowledge_rating"`
	PunctualityRating   int       `json:"punctuality_rating"`
	ReviewText          string    `json:"review_text"`
	WhatLearned         string    `json:"what_learned"`
	Suggestions         string    `json:"suggestions"`
	WouldRecommend      bool      `json:"would_recommend"`
	IsAnonymous         bool      `json:"is_anonymous"`
	IsPublic            bool      `json:"is_public"`
	IsFlagged           bool      `json:"is_flagged"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Anonymize убирает всё, по чему можно вычислить автора: в сессии два участника,
// поэтому роли и сама сессия выдают его так же, как reviewer_id.
func (r *SessionReview) Anonymize() {
	r.ReviewerID = 0
	r.TeacherID = 0
	r.LearnerID = 0
	r.SessionID = 0
}

// ReviewerRole returns which side of the session wrote the review
func (r *SessionReview) ReviewerRole() Role {
	switch r.ReviewerID {
	case r.TeacherID:
		return RoleTeacher
	case r.LearnerID:
		return RoleLearner
	}
	return RoleNone
}
