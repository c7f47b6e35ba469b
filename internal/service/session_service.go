package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/monitoring"
	"go.uber.org/zap"
)

// RescheduleInput is the scheduling step for a session that has not started
type RescheduleInput struct {
	ScheduledDate   time.Time
	DurationMinutes int
	Format          model.SessionFormat
	Location        string
	MeetingLink     string
}

// NotesInput updates the caller's own notes; Summary is left alone when nil
type NotesInput struct {
	Notes   string
	Summary *string
}

type SessionService struct {
	sessions SessionStore
	catalog  CatalogStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionService(sessions SessionStore, catalog CatalogStore, notifier Notifier, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ============ Переходы ============

// Start переводит scheduled → in_progress. Окно CanStart не проверяется.
func (s *SessionService) Start(ctx context.Context, actorID, sessionID int64) (*model.SwapSession, error) {
	return s.transition(ctx, actorID, sessionID, model.SessionStatusInProgress, model.SessionStatusScheduled)
}

// End переводит in_progress → completed. actual_duration не вычисляется.
func (s *SessionService) End(ctx context.Context, actorID, sessionID int64) (*model.SwapSession, error) {
	return s.transition(ctx, actorID, sessionID, model.SessionStatusCompleted, model.SessionStatusInProgress)
}

// Cancel отменяет сессию из любого статуса
func (s *SessionService) Cancel(ctx context.Context, actorID, sessionID int64) (*model.SwapSession, error) {
	return s.transition(ctx, actorID, sessionID, model.SessionStatusCancelled)
}

// MarkNoShow закрывает несостоявшуюся сессию; выставляется только вручную
func (s *SessionService) MarkNoShow(ctx context.Context, actorID, sessionID int64) (*model.SwapSession, error) {
	return s.transition(ctx, actorID, sessionID, model.SessionStatusNoShow, model.SessionStatusScheduled)
}

// transition применяет переход условным UPDATE; пустой from означает любой статус
func (s *SessionService) transition(ctx context.Context, actorID, sessionID int64, to model.SessionStatus, from ...model.SessionStatus) (*model.SwapSession, error) {
	session, err := s.visible(ctx, actorID, sessionID)
	if err != nil {
		return nil, err
	}

	if len(from) > 0 && !statusIn(session.Status, from) {
		return nil, apperrors.StateConflict(fmt.Sprintf("Session is %s and cannot become %s.", session.Status, to))
	}

	now := s.now()
	ok, err := s.sessions.Transition(ctx, session.ID, to, now, from...)
	if err != nil {
		return nil, fmt.Errorf("transition session: %w", err)
	}
	if !ok {
		return nil, apperrors.StateConflict("Session status changed, try again.")
	}

	session.Status = to
	session.UpdatedAt = now
	switch to {
	case model.SessionStatusInProgress:
		session.StartedAt = &now
	case model.SessionStatusCompleted:
		session.EndedAt = &now
	}

	s.logger.Info("Swap session status changed",
		zap.Int64("session_id", session.ID),
		zap.Int64("actor_id", actorID),
		zap.String("status", string(to)),
	)
	monitoring.RecordSessionTransition(string(to))

	if kind, title, ok := sessionNotification(to); ok {
		counterpart, _ := session.Counterpart(actorID)
		s.notify(ctx, notification(kind, counterpart, actorID, session.ID, title, ""))
	}

	return session, nil
}

func sessionNotification(to model.SessionStatus) (model.NotificationKind, string, bool) {
	switch to {
	case model.SessionStatusInProgress:
		return model.NotificationSessionStarted, "Your skill swap session has started", true
	case model.SessionStatusCompleted:
		return model.NotificationSessionCompleted, "Your skill swap session is complete", true
	case model.SessionStatusCancelled:
		return model.NotificationSessionCancelled, "Your skill swap session was cancelled", true
	}
	return "", "", false
}

func statusIn(status model.SessionStatus, set []model.SessionStatus) bool {
	for _, st := range set {
		if st == status {
			return true
		}
	}
	return false
}

// ============ Планирование и заметки ============

// Reschedule меняет время и место ещё не начатой сессии
func (s *SessionService) Reschedule(ctx context.Context, actorID, sessionID int64, in RescheduleInput) (*model.SwapSession, error) {
	session, err := s.visible(ctx, actorID, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	in.Location = strings.TrimSpace(in.Location)
	in.MeetingLink = strings.TrimSpace(in.MeetingLink)

	fields := map[string]string{}
	if !in.ScheduledDate.After(now) {
		fields["scheduled_date"] = "Session must be scheduled in the future."
	}
	if in.DurationMinutes <= 0 {
		fields["duration_minutes"] = "Duration must be a positive number of minutes."
	}
	switch in.Format {
	case model.FormatOnline:
		if in.MeetingLink == "" {
			fields["meeting_link"] = "Meeting link is required for online sessions."
		}
	case model.FormatInPerson:
	default:
		fields["format"] = "Select a valid choice."
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("Invalid schedule.", fields)
	}

	if session.Status != model.SessionStatusScheduled {
		return nil, apperrors.StateConflict(fmt.Sprintf("Session is %s and cannot be rescheduled.", session.Status))
	}

	session.ScheduledDate = in.ScheduledDate
	session.DurationMinutes = in.DurationMinutes
	session.Format = in.Format
	session.Location = in.Location
	session.MeetingLink = in.MeetingLink

	ok, err := s.sessions.Reschedule(ctx, session, now)
	if err != nil {
		return nil, fmt.Errorf("reschedule session: %w", err)
	}
	if !ok {
		return nil, apperrors.StateConflict("Session status changed, try again.")
	}
	session.UpdatedAt = now

	s.logger.Info("Swap session rescheduled",
		zap.Int64("session_id", session.ID),
		zap.Time("scheduled_date", session.ScheduledDate),
	)

	counterpart, _ := session.Counterpart(actorID)
	s.notify(ctx, notification(model.NotificationSessionScheduled, counterpart, actorID, session.ID,
		"Your skill swap session was rescheduled", session.ScheduledDate.Format(time.RFC1123)))

	return session, nil
}

// UpdateNotes: учитель пишет teacher_notes, ученик learner_notes, итог может задать любой
func (s *SessionService) UpdateNotes(ctx context.Context, actorID, sessionID int64, in NotesInput) (*model.SwapSession, error) {
	session, err := s.visible(ctx, actorID, sessionID)
	if err != nil {
		return nil, err
	}

	var summary *string
	if in.Summary != nil {
		trimmed := strings.TrimSpace(*in.Summary)
		summary = &trimmed
	}

	// Пишем только свою колонку, чтобы не затереть заметки второго участника
	err = s.sessions.UpdateNotes(ctx, session.ID, session.RoleOf(actorID), strings.TrimSpace(in.Notes), summary, s.now())
	if err != nil {
		return nil, fmt.Errorf("update notes: %w", err)
	}

	return s.Get(ctx, actorID, sessionID)
}

// ============ Чтение ============

func (s *SessionService) Get(ctx context.Context, actorID, sessionID int64) (*model.SwapSession, error) {
	session, err := s.visible(ctx, actorID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.attachSkill(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetByRequest returns the session created from a request to one of its participants
func (s *SessionService) GetByRequest(ctx context.Context, actorID, requestID int64) (*model.SwapSession, error) {
	session, err := s.sessions.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get session by request: %w", err)
	}
	if session == nil || !session.IsParticipant(actorID) {
		return nil, apperrors.NotFound("session")
	}
	return session, nil
}

func (s *SessionService) List(ctx context.Context, userID int64) ([]*model.SwapSession, error) {
	sessions, err := s.sessions.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return s.withSkills(ctx, sessions)
}

// ListUpcoming получает сессии, запланированные начиная с текущего момента
func (s *SessionService) ListUpcoming(ctx context.Context, userID int64) ([]*model.SwapSession, error) {
	sessions, err := s.sessions.ListUpcoming(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list upcoming sessions: %w", err)
	}
	return s.withSkills(ctx, sessions)
}

// ListHistory получает прошедшие сессии
func (s *SessionService) ListHistory(ctx context.Context, userID int64) ([]*model.SwapSession, error) {
	sessions, err := s.sessions.ListHistory(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list session history: %w", err)
	}
	return s.withSkills(ctx, sessions)
}

func (s *SessionService) visible(ctx context.Context, actorID, sessionID int64) (*model.SwapSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil || !session.IsParticipant(actorID) {
		return nil, apperrors.NotFound("session")
	}
	return session, nil
}

func (s *SessionService) withSkills(ctx context.Context, sessions []*model.SwapSession) ([]*model.SwapSession, error) {
	for _, session := range sessions {
		if err := s.attachSkill(ctx, session); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (s *SessionService) attachSkill(ctx context.Context, session *model.SwapSession) error {
	skill, err := s.catalog.GetSkill(ctx, session.SkillID)
	if err != nil {
		return fmt.Errorf("get skill: %w", err)
	}
	session.Skill = skill
	return nil
}

func (s *SessionService) notify(ctx context.Context, n *model.Notification) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, n)
	}
}
