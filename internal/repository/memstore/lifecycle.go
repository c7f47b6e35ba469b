package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/repository"
	"github.com/shopspring/decimal"
)

// ============ Requests ============

type Requests struct{ db *DB }

func (db *DB) Requests() *Requests { return &Requests{db: db} }

func (s *Requests) CreateIfNoPending(ctx context.Context, req *model.SwapRequest) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, r := range s.db.requests {
		if r.RequesterID == req.RequesterID && r.RecipientID == req.RecipientID && r.IsPending() {
			return false, nil
		}
	}
	req.ID = s.db.id()
	req.UpdatedAt = req.CreatedAt
	stored := *req
	stored.OfferedSkill = nil
	track(ctx, s.db.requests, req.ID)
	s.db.requests[req.ID] = stored
	return true, nil
}

func (s *Requests) GetByID(ctx context.Context, id int64) (*model.SwapRequest, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *Requests) where(match func(r model.SwapRequest) bool) []*model.SwapRequest {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var result []*model.SwapRequest
	for _, r := range s.db.requests {
		if match(r) {
			result = append(result, &r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}

func (s *Requests) ListByRequester(ctx context.Context, userID int64) ([]*model.SwapRequest, error) {
	return s.where(func(r model.SwapRequest) bool { return r.RequesterID == userID }), nil
}

func (s *Requests) ListByRecipient(ctx context.Context, userID int64) ([]*model.SwapRequest, error) {
	return s.where(func(r model.SwapRequest) bool { return r.RecipientID == userID }), nil
}

func (s *Requests) Respond(ctx context.Context, id int64, status model.RequestStatus, message string, at time.Time) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.requests[id]
	if !ok || !r.IsPending() || at.After(r.ExpiresAt) {
		return false, nil
	}
	r.Status = status
	r.ResponseMessage = message
	r.RespondedAt = &at
	r.UpdatedAt = at
	track(ctx, s.db.requests, id)
	s.db.requests[id] = r
	return true, nil
}

func (s *Requests) Cancel(ctx context.Context, id, requesterID int64, at time.Time) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.requests[id]
	if !ok || r.RequesterID != requesterID {
		return false, nil
	}
	r.Status = model.RequestStatusCancelled
	r.UpdatedAt = at
	track(ctx, s.db.requests, id)
	s.db.requests[id] = r
	return true, nil
}

func (s *Requests) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, r := range s.db.requests {
		if r.IsPending() && r.ExpiresAt.Before(now) {
			r.Status = model.RequestStatusExpired
			r.UpdatedAt = now
			track(ctx, s.db.requests, id)
			s.db.requests[id] = r
			n++
		}
	}
	return n, nil
}

// ============ Sessions ============

type Sessions struct{ db *DB }

func (db *DB) Sessions() *Sessions { return &Sessions{db: db} }

func (s *Sessions) Create(ctx context.Context, sess *model.SwapSession) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.sessions {
		if existing.RequestID == sess.RequestID {
			return repository.ErrDuplicate
		}
	}
	sess.ID = s.db.id()
	sess.CreatedAt = time.Now()
	sess.UpdatedAt = sess.CreatedAt
	stored := *sess
	stored.Skill = nil
	track(ctx, s.db.sessions, sess.ID)
	s.db.sessions[sess.ID] = stored
	return nil
}

func (s *Sessions) GetByID(ctx context.Context, id int64) (*model.SwapSession, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sess, ok := s.db.sessions[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *Sessions) GetByRequestID(ctx context.Context, requestID int64) (*model.SwapSession, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, sess := range s.db.sessions {
		if sess.RequestID == requestID {
			return &sess, nil
		}
	}
	return nil, nil
}

func (s *Sessions) where(userID int64, match func(sess model.SwapSession) bool) []*model.SwapSession {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var result []*model.SwapSession
	for _, sess := range s.db.sessions {
		if sess.IsParticipant(userID) && match(sess) {
			result = append(result, &sess)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduledDate.Before(result[j].ScheduledDate) })
	return result
}

func (s *Sessions) ListByParticipant(ctx context.Context, userID int64) ([]*model.SwapSession, error) {
	return s.where(userID, func(model.SwapSession) bool { return true }), nil
}

func (s *Sessions) ListUpcoming(ctx context.Context, userID int64, now time.Time) ([]*model.SwapSession, error) {
	return s.where(userID, func(sess model.SwapSession) bool { return !sess.ScheduledDate.Before(now) }), nil
}

func (s *Sessions) ListHistory(ctx context.Context, userID int64, now time.Time) ([]*model.SwapSession, error) {
	return s.where(userID, func(sess model.SwapSession) bool { return sess.ScheduledDate.Before(now) }), nil
}

func (s *Sessions) Transition(ctx context.Context, id int64, to model.SessionStatus, at time.Time, from ...model.SessionStatus) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sess, ok := s.db.sessions[id]
	if !ok {
		return false, nil
	}
	if len(from) > 0 && !slices.Contains(from, sess.Status) {
		return false, nil
	}
	sess.Status = to
	switch to {
	case model.SessionStatusInProgress:
		sess.StartedAt = &at
	case model.SessionStatusCompleted:
		sess.EndedAt = &at
	}
	sess.UpdatedAt = at
	track(ctx, s.db.sessions, id)
	s.db.sessions[id] = sess
	return true, nil
}

func (s *Sessions) Reschedule(ctx context.Context, upd *model.SwapSession, at time.Time) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sess, ok := s.db.sessions[upd.ID]
	if !ok || sess.Status != model.SessionStatusScheduled {
		return false, nil
	}
	sess.ScheduledDate = upd.ScheduledDate
	sess.DurationMinutes = upd.DurationMinutes
	sess.Format = upd.Format
	sess.Location = upd.Location
	sess.MeetingLink = upd.MeetingLink
	sess.UpdatedAt = at
	track(ctx, s.db.sessions, upd.ID)
	s.db.sessions[upd.ID] = sess
	return true, nil
}

func (s *Sessions) UpdateNotes(ctx context.Context, id int64, role model.Role, notes string, summary *string, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sess, ok := s.db.sessions[id]
	if !ok {
		return errNotFound("session")
	}
	switch role {
	case model.RoleTeacher:
		sess.TeacherNotes = notes
	case model.RoleLearner:
		sess.LearnerNotes = notes
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	if summary != nil {
		sess.SessionSummary = *summary
	}
	sess.UpdatedAt = at
	track(ctx, s.db.sessions, id)
	s.db.sessions[id] = sess
	return nil
}

// ============ Reviews ============

type Reviews struct{ db *DB }

func (db *DB) Reviews() *Reviews { return &Reviews{db: db} }

func (s *Reviews) Create(ctx context.Context, rv *model.SessionReview) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.reviews {
		if existing.SessionID == rv.SessionID && existing.ReviewerID == rv.ReviewerID {
			return repository.ErrDuplicate
		}
	}
	rv.ID = s.db.id()
	rv.CreatedAt = time.Now()
	rv.UpdatedAt = rv.CreatedAt
	track(ctx, s.db.reviews, rv.ID)
	s.db.reviews[rv.ID] = *rv
	return nil
}

func (s *Reviews) Exists(ctx context.Context, sessionID, reviewerID int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, rv := range s.db.reviews {
		if rv.SessionID == sessionID && rv.ReviewerID == reviewerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Reviews) GetByID(ctx context.Context, id int64) (*model.SessionReview, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rv, ok := s.db.reviews[id]
	if !ok {
		return nil, nil
	}
	return &rv, nil
}

func (s *Reviews) Update(ctx context.Context, rv *model.SessionReview) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.reviews[rv.ID]; !ok {
		return errNotFound("review")
	}
	rv.UpdatedAt = time.Now()
	track(ctx, s.db.reviews, rv.ID)
	s.db.reviews[rv.ID] = *rv
	return nil
}

func (s *Reviews) where(match func(rv model.SessionReview) bool) []*model.SessionReview {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var result []*model.SessionReview
	for _, rv := range s.db.reviews {
		if match(rv) {
			result = append(result, &rv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}

func (s *Reviews) ListByReviewer(ctx context.Context, userID int64) ([]*model.SessionReview, error) {
	return s.where(func(rv model.SessionReview) bool { return rv.ReviewerID == userID }), nil
}

func (s *Reviews) ListByReviewee(ctx context.Context, userID int64) ([]*model.SessionReview, error) {
	return s.where(func(rv model.SessionReview) bool { return rv.RevieweeID == userID }), nil
}

func (s *Reviews) StatsFor(ctx context.Context, userID int64) (*model.ProfileStats, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var stats model.ProfileStats
	for _, sess := range s.db.sessions {
		if sess.Status != model.SessionStatusCompleted {
			continue
		}
		switch userID {
		case sess.TeacherID:
			stats.SessionsTaught++
		case sess.LearnerID:
			stats.SessionsLearned++
		}
	}

	var teacherSum, teacherN, learnerSum, learnerN int64
	for _, rv := range s.db.reviews {
		if rv.RevieweeID != userID || !rv.IsPublic {
			continue
		}
		switch userID {
		case rv.TeacherID:
			teacherSum += int64(rv.OverallRating)
			teacherN++
		case rv.LearnerID:
			learnerSum += int64(rv.OverallRating)
			learnerN++
		}
	}
	stats.AverageRatingAsTeacher = average(teacherSum, teacherN)
	stats.AverageRatingAsLearner = average(learnerSum, learnerN)
	return &stats, nil
}

func average(sum, n int64) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(n)).Round(2)
}

// ============ Notifications ============

type Notifications struct{ db *DB }

func (db *DB) Notifications() *Notifications { return &Notifications{db: db} }

func (s *Notifications) Create(ctx context.Context, n *model.Notification) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n.ID = s.db.id()
	n.CreatedAt = time.Now()
	track(ctx, s.db.notifications, n.ID)
	s.db.notifications[n.ID] = *n
	return nil
}

func (s *Notifications) ListByRecipient(ctx context.Context, userID int64, limit int) ([]*model.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var result []*model.Notification
	for _, n := range s.db.notifications {
		if n.RecipientID == userID {
			result = append(result, &n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Notifications) CountUnread(ctx context.Context, userID int64) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	count := 0
	for _, n := range s.db.notifications {
		if n.RecipientID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *Notifications) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n, ok := s.db.notifications[id]
	if !ok || n.RecipientID != userID {
		return false, nil
	}
	n.IsRead = true
	track(ctx, s.db.notifications, id)
	s.db.notifications[id] = n
	return true, nil
}

func (s *Notifications) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var count int64
	for id, n := range s.db.notifications {
		if n.RecipientID == userID && !n.IsRead {
			n.IsRead = true
			track(ctx, s.db.notifications, id)
			s.db.notifications[id] = n
			count++
		}
	}
	return count, nil
}

// ============ Matches ============

type Matches struct{ db *DB }

func (db *DB) Matches() *Matches { return &Matches{db: db} }

func (s *Matches) ListForLearner(ctx context.Context, learnerID int64) ([]*model.SkillMatch, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var result []*model.SkillMatch
	for _, m := range s.db.matches {
		if m.LearnerID == learnerID && !m.IsDismissed {
			result = append(result, &m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].CompatibilityScore.Cmp(result[j].CompatibilityScore); c != 0 {
			return c > 0
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (s *Matches) Dismiss(ctx context.Context, id, learnerID int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.matches[id]
	if !ok || m.LearnerID != learnerID {
		return false, nil
	}
	m.IsDismissed = true
	track(ctx, s.db.matches, id)
	s.db.matches[id] = m
	return true, nil
}
