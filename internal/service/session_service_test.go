package service

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Сценарий: scheduled → Start → End
func TestSessionService_StartEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.scheduledSession(t)

	// окно не проверяется: старт за сутки до начала
	assert.False(t, session.CanStart(f.now))
	started, err := f.sessions.Start(ctx, f.learner.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)
	assert.Equal(t, f.now, *started.StartedAt)
	assert.True(t, started.IsOngoing())
	assert.Equal(t, model.NotificationSessionStarted, f.notifier.last().Kind)
	assert.Equal(t, f.teacher.ID, f.notifier.last().RecipientID)

	f.now = f.now.Add(45 * time.Minute)
	ended, err := f.sessions.End(ctx, f.teacher.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, ended.Status)
	require.NotNil(t, ended.EndedAt)
	assert.Equal(t, f.now, *ended.EndedAt)
	assert.Nil(t, ended.ActualDuration)

	stored, err := f.sessions.Get(ctx, f.learner.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, stored.Status)
	assert.Nil(t, stored.ActualDuration)
	require.NotNil(t, stored.Skill)
	assert.Equal(t, "Go", stored.Skill.Name)
}

func TestSessionService_RepeatedStartIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.scheduledSession(t)

	_, err := f.sessions.Start(ctx, f.teacher.ID, session.ID)
	require.NoError(t, err)

	_, err = f.sessions.Start(ctx, f.teacher.ID, session.ID)
	require.ErrorIs(t, err, apperrors.ErrStateConflict)
}

func TestSessionService_EndRequiresInProgress(t *testing.T) {
	f := newFixture(t)
	session := f.scheduledSession(t)

	_, err := f.sessions.End(context.Background(), f.teacher.ID, session.ID)
	require.ErrorIs(t, err, apperrors.ErrStateConflict)
}

func TestSessionService_CancelFromAnyState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, status := range []model.SessionStatus{
		model.SessionStatusScheduled,
		model.SessionStatusInProgress,
		model.SessionStatusCompleted,
		model.SessionStatusNoShow,
	} {
		t.Run(string(status), func(t *testing.T) {
			session := f.scheduledSession(t)
			session.Status = status
			f.db.PutSession(*session)

			cancelled, err := f.sessions.Cancel(ctx, f.learner.ID, session.ID)
			require.NoError(t, err)
			assert.Equal(t, model.SessionStatusCancelled, cancelled.Status)
		})
	}
}

func TestSessionService_Outsider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.scheduledSession(t)

	_, err := f.sessions.Start(ctx, f.outsider.ID, session.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.sessions.Get(ctx, f.outsider.ID, session.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	stored, err := f.sessions.Get(ctx, f.teacher.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusScheduled, stored.Status)
}

func TestSessionService_MarkNoShow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.scheduledSession(t)

	noShow, err := f.sessions.MarkNoShow(ctx, f.teacher.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusNoShow, noShow.Status)

	_, err = f.sessions.Start(ctx, f.teacher.ID, session.ID)
	require.ErrorIs(t, err, apperrors.ErrStateConflict)
}

func TestSessionService_Reschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.scheduledSession(t)
	when := f.now.Add(48 * time.Hour)

	_, err := f.sessions.Reschedule(ctx, f.learner.ID, session.ID, RescheduleInput{
		ScheduledDate:   when,
		DurationMinutes: 90,
		Format:          model.FormatOnline,
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	appErr, _ := apperrors.As(err)
	assert.Contains(t, appErr.Fields, "meeting_link")

	updated, err := f.sessions.Reschedule(ctx, f.learner.ID, session.ID, RescheduleInput{
		ScheduledDate:   when,
		DurationMinutes: 90,
		Format:          model.FormatOnline,
		MeetingLink:     "https://meet.example.edu/go",
	})
	require.NoError(t, err)
	assert.Equal(t, when, updated.ScheduledDate)
	assert.Equal(t, when.Add(90*time.Minute), updated.EndTime())
	assert.Equal(t, model.NotificationSessionScheduled, f.notifier.last().Kind)

	_, err = f.sessions.Reschedule(ctx, f.learner.ID, session.ID, RescheduleInput{
		ScheduledDate:   f.now.Add(-time.Hour),
		DurationMinutes: 0,
		Format:          "hybrid",
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	appErr, _ = apperrors.As(err)
	assert.Len(t, appErr.Fields, 3)

	_, err = f.sessions.Start(ctx, f.teacher.ID, session.ID)
	require.NoError(t, err)
	_, err = f.sessions.Reschedule(ctx, f.learner.ID, session.ID, RescheduleInput{
		ScheduledDate:   when,
		DurationMinutes: 30,
		Format:          model.FormatInPerson,
	})
	require.ErrorIs(t, err, apperrors.ErrStateConflict)
}

func TestSessionService_UpdateNotesByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.scheduledSession(t)

	summary := "Covered goroutines"
	_, err := f.sessions.UpdateNotes(ctx, f.teacher.ID, session.ID, NotesInput{Notes: "bring laptop", Summary: &summary})
	require.NoError(t, err)

	updated, err := f.sessions.UpdateNotes(ctx, f.learner.ID, session.ID, NotesInput{Notes: "read the tour"})
	require.NoError(t, err)

	assert.Equal(t, "bring laptop", updated.TeacherNotes)
	assert.Equal(t, "read the tour", updated.LearnerNotes)
	assert.Equal(t, summary, updated.SessionSummary)
}

// staleSessions отдаёт снимок, прочитанный до записей, как два параллельных читателя
type staleSessions struct {
	SessionStore
	snapshot model.SwapSession
}

func (s *staleSessions) GetByID(_ context.Context, id int64) (*model.SwapSession, error) {
	if id != s.snapshot.ID {
		return nil, nil
	}
	copied := s.snapshot
	return &copied, nil
}

func TestSessionService_UpdateNotesKeepsBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.scheduledSession(t)

	snapshot, err := f.db.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	sessions := NewSessionService(&staleSessions{SessionStore: f.db.Sessions(), snapshot: *snapshot}, f.db.Catalog(), nil, zap.NewNop())

	_, err = sessions.UpdateNotes(ctx, f.teacher.ID, session.ID, NotesInput{Notes: "teacher prep"})
	require.NoError(t, err)
	_, err = sessions.UpdateNotes(ctx, f.learner.ID, session.ID, NotesInput{Notes: "learner q"})
	require.NoError(t, err)

	stored, err := f.db.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "teacher prep", stored.TeacherNotes)
	assert.Equal(t, "learner q", stored.LearnerNotes)
	assert.Empty(t, stored.SessionSummary)
}

func TestSessionService_UpcomingAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.scheduledSession(t)

	upcoming, err := f.sessions.ListUpcoming(ctx, f.learner.ID)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.True(t, upcoming[0].IsUpcoming(f.now))

	f.now = session.ScheduledDate.Add(time.Hour)
	upcoming, err = f.sessions.ListUpcoming(ctx, f.learner.ID)
	require.NoError(t, err)
	assert.Empty(t, upcoming)

	history, err := f.sessions.ListHistory(ctx, f.teacher.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	all, err := f.sessions.List(ctx, f.outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, all)

	byRequest, err := f.sessions.GetByRequest(ctx, f.teacher.ID, session.RequestID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, byRequest.ID)
}
