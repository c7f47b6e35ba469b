package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SwapSessionRepository struct {
	*base.Repository
}

func NewSwapSessionRepository(pool *pgxpool.Pool) *SwapSessionRepository {
	return &SwapSessionRepository{Repository: base.NewRepository(pool)}
}

const sessionColumns = `
	id, request_id, teacher_id, learner_id, skill_id, scheduled_date, duration_minutes, format,
	location, meeting_link, status, started_at, ended_at, actual_duration, teacher_notes,
	learner_notes, session_summary, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*model.SwapSession, error) {
	var s model.SwapSession
	err := row.Scan(
		&s.ID,
		&s.RequestID,
		&s.TeacherID,
		&s.LearnerID,
		&s.SkillID,
		&s.ScheduledDate,
		&s.DurationMinutes,
		&s.Format,
		&s.Location,
		&s.MeetingLink,
		&s.Status,
		&s.StartedAt,
		&s.EndedAt,
		&s.ActualDuration,
		&s.TeacherNotes,
		&s.LearnerNotes,
		&s.SessionSummary,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create создаёт сессию для принятой заявки
func (r *SwapSessionRepository) Create(ctx context.Context, s *model.SwapSession) error {
	query := `
		INSERT INTO swap_sessions (request_id, teacher_id, learner_id, skill_id, scheduled_date,
		                           duration_minutes, format, location, meeting_link, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		s.RequestID,
		s.TeacherID,
		s.LearnerID,
		s.SkillID,
		s.ScheduledDate,
		s.DurationMinutes,
		s.Format,
		s.Location,
		s.MeetingLink,
		s.Status,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create swap session: %w", err)
	}

	return nil
}

// GetByID получает сессию по ID
func (r *SwapSessionRepository) GetByID(ctx context.Context, id int64) (*model.SwapSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM swap_sessions WHERE id = $1`

	s, err := scanSession(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get swap session: %w", err)
	}

	return s, nil
}

// GetByRequestID получает сессию, созданную из заявки
func (r *SwapSessionRepository) GetByRequestID(ctx context.Context, requestID int64) (*model.SwapSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM swap_sessions WHERE request_id = $1`

	s, err := scanSession(r.QueryRow(ctx, query, requestID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get swap session by request: %w", err)
	}

	return s, nil
}

func (r *SwapSessionRepository) list(ctx context.Context, filter string, args ...any) ([]*model.SwapSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM swap_sessions
		WHERE (teacher_id = $1 OR learner_id = $1)` + filter + `
		ORDER BY scheduled_date
	`

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list swap sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.SwapSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap sessions: %w", err)
	}

	return sessions, nil
}

// ListByParticipant получает все сессии пользователя
func (r *SwapSessionRepository) ListByParticipant(ctx context.Context, userID int64) ([]*model.SwapSession, error) {
	return r.list(ctx, "", userID)
}

// ListUpcoming получает сессии начиная с now
func (r *SwapSessionRepository) ListUpcoming(ctx context.Context, userID int64, now time.Time) ([]*model.SwapSession, error) {
	return r.list(ctx, " AND scheduled_date >= $2", userID, now)
}

// ListHistory получает прошедшие сессии
func (r *SwapSessionRepository) ListHistory(ctx context.Context, userID int64, now time.Time) ([]*model.SwapSession, error) {
	return r.list(ctx, " AND scheduled_date < $2", userID, now)
}

// Transition меняет статус сессии. Пустой from означает "из любого статуса".
// started_at и ended_at выставляются при переходе в in_progress и completed.
func (r *SwapSessionRepository) Transition(ctx context.Context, id int64, to model.SessionStatus, at time.Time, from ...model.SessionStatus) (bool, error) {
	query := `
		UPDATE swap_sessions
		SET status     = $1,
		    started_at = CASE WHEN $1::text = 'in_progress' THEN $2 ELSE started_at END,
		    ended_at   = CASE WHEN $1::text = 'completed' THEN $2 ELSE ended_at END,
		    updated_at = $2
		WHERE id = $3 AND (cardinality($4::text[]) = 0 OR status = ANY($4::text[]))
	`

	statuses := make([]string, 0, len(from))
	for _, s := range from {
		statuses = append(statuses, string(s))
	}

	affected, err := r.ExecAffected(ctx, query, string(to), at, id, statuses)
	if err != nil {
		return false, fmt.Errorf("transition swap session: %w", err)
	}

	return affected == 1, nil
}

// Reschedule обновляет детали запланированной сессии
func (r *SwapSessionRepository) Reschedule(ctx context.Context, s *model.SwapSession, at time.Time) (bool, error) {
	query := `
		UPDATE swap_sessions
		SET scheduled_date = $1, duration_minutes = $2, format = $3, location = $4, meeting_link = $5,
		    updated_at = $6
		WHERE id = $7 AND status = 'scheduled'
	`

	affected, err := r.ExecAffected(
		ctx, query,
		s.ScheduledDate,
		s.DurationMinutes,
		s.Format,
		s.Location,
		s.MeetingLink,
		at,
		s.ID,
	)
	if err != nil {
		return false, fmt.Errorf("reschedule swap session: %w", err)
	}

	return affected == 1, nil
}

// UpdateNotes сохраняет заметки одной стороны и, если передан, итог сессии
func (r *SwapSessionRepository) UpdateNotes(ctx context.Context, id int64, role model.Role, notes string, summary *string, at time.Time) error {
	var column string
	switch role {
	case model.RoleTeacher:
		column = "teacher_notes"
	case model.RoleLearner:
		column = "learner_notes"
	default:
		return fmt.Errorf("update session notes: unknown role %q", role)
	}

	query := `
		UPDATE swap_sessions
		SET ` + column + ` = $1, session_summary = COALESCE($2::text, session_summary), updated_at = $3
		WHERE id = $4
	`

	affected, err := r.ExecAffected(ctx, query, notes, summary, at, id)
	if err != nil {
		return fmt.Errorf("update session notes: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("session not found")
	}

	return nil
}
