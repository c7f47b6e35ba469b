package service

import (
	"context"
	"sync"
	"testing"
	"time"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestService_Create(t *testing.T) {
	f := newFixture(t)

	req := f.pendingRequest(t, model.FormatOnline)

	assert.Equal(t, model.RequestStatusPending, req.Status)
	assert.Equal(t, f.now, req.CreatedAt)
	assert.Equal(t, req.CreatedAt.Add(7*24*time.Hour), req.ExpiresAt)
	assert.Nil(t, req.RespondedAt)
	assert.Equal(t, []model.NotificationKind{model.NotificationSkillRequest}, f.notifier.kinds())
	assert.Equal(t, f.teacher.ID, f.notifier.last().RecipientID)
}

func TestRequestService_CreateDefaults(t *testing.T) {
	f := newFixture(t)

	req, err := f.requests.Create(context.Background(), f.learner.ID, CreateRequestInput{
		RecipientID:    f.teacher.ID,
		OfferedSkillID: f.offered.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, model.DefaultProposedDuration, req.ProposedDuration)
	assert.Equal(t, model.FormatFlexible, req.ProposedFormat)
}

func TestRequestService_CreateRejectsSecondPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.pendingRequest(t, model.FormatOnline)

	_, err := f.requests.Create(ctx, f.learner.ID, CreateRequestInput{RecipientID: f.teacher.ID, OfferedSkillID: f.offered.ID})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "pending request")

	// после ответа пара снова свободна
	_, _, err = f.requests.Respond(ctx, f.teacher.ID, first.ID, RespondInput{Action: ActionDecline})
	require.NoError(t, err)

	_, err = f.requests.Create(ctx, f.learner.ID, CreateRequestInput{RecipientID: f.teacher.ID, OfferedSkillID: f.offered.ID})
	require.NoError(t, err)
}

func TestRequestService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	otherSkill := f.db.AddSkill(model.Skill{CategoryID: f.skill.CategoryID, Name: "Rust"})
	learnerOffer, err := f.catalog.OfferSkill(ctx, f.learner.ID, OfferSkillInput{SkillID: otherSkill.ID, ProficiencyLevel: model.ProficiencyBeginner})
	require.NoError(t, err)
	outsiderWish, err := f.catalog.DesireSkill(ctx, f.outsider.ID, DesireSkillInput{SkillID: otherSkill.ID})
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor int64
		in    CreateRequestInput
		kind  error
		field string
	}{
		{"self request", f.teacher.ID, CreateRequestInput{RecipientID: f.teacher.ID, OfferedSkillID: f.offered.ID}, apperrors.ErrValidation, "recipient"},
		{"missing skill", f.learner.ID, CreateRequestInput{RecipientID: f.teacher.ID}, apperrors.ErrValidation, "offered_skill"},
		{"negative duration", f.learner.ID, CreateRequestInput{RecipientID: f.teacher.ID, OfferedSkillID: f.offered.ID, ProposedDuration: -5}, apperrors.ErrValidation, "proposed_duration"},
		{"bad format", f.learner.ID, CreateRequestInput{RecipientID: f.teacher.ID, OfferedSkillID: f.offered.ID, ProposedFormat: "hybrid"}, apperrors.ErrValidation, "proposed_format"},
		{"skill of someone else", f.outsider.ID, CreateRequestInput{RecipientID: f.teacher.ID, OfferedSkillID: learnerOffer.ID}, apperrors.ErrValidation, "offered_skill"},
		{"foreign desired skill", f.learner.ID, CreateRequestInput{RecipientID: f.teacher.ID, OfferedSkillID: f.offered.ID, DesiredSkillID: &outsiderWish.ID}, apperrors.ErrValidation, "desired_skill"},
		{"unknown recipient", f.learner.ID, CreateRequestInput{RecipientID: 9999, OfferedSkillID: f.offered.ID}, apperrors.ErrNotFound, ""},
		{"unknown offered skill", f.learner.ID, CreateRequestInput{RecipientID: f.teacher.ID, OfferedSkillID: 9999}, apperrors.ErrNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.requests.Create(ctx, tt.actor, tt.in)
			require.ErrorIs(t, err, tt.kind)
			if tt.field != "" {
				appErr, ok := apperrors.As(err)
				require.True(t, ok)
				assert.Contains(t, appErr.Fields, tt.field)
			}
		})
	}
}

func TestRequestService_CreateRejectsInactiveOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active, err := f.catalog.ToggleOffered(ctx, f.teacher.ID, f.offered.ID)
	require.NoError(t, err)
	require.False(t, active)

	_, err = f.requests.Create(ctx, f.learner.ID, CreateRequestInput{RecipientID: f.teacher.ID, OfferedSkillID: f.offered.ID})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

// Сценарий: U1→U2, 60 минут, online, U2 принимает
func TestRequestService_AcceptCreatesSession(t *testing.T) {
	f := newFixture(t)
	req := f.pendingRequest(t, model.FormatOnline)

	updated, session, err := f.requests.Respond(context.Background(), f.teacher.ID, req.ID, RespondInput{
		Action:  ActionAccept,
		Message: "See you",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RequestStatusAccepted, updated.Status)
	require.NotNil(t, updated.RespondedAt)
	assert.Equal(t, f.now, *updated.RespondedAt)
	assert.Equal(t, "See you", updated.ResponseMessage)

	require.NotNil(t, session)
	assert.Equal(t, model.SessionStatusScheduled, session.Status)
	assert.Equal(t, 60, session.DurationMinutes)
	assert.Equal(t, model.FormatOnline, session.Format)
	assert.Equal(t, f.teacher.ID, session.TeacherID)
	assert.Equal(t, f.learner.ID, session.LearnerID)
	assert.Equal(t, f.skill.ID, session.SkillID)
	assert.Equal(t, req.ID, session.RequestID)
	assert.Equal(t, f.now.Add(24*time.Hour), session.ScheduledDate)
	assert.Equal(t, 1, f.db.CountSessions())

	stored, err := f.requests.Get(context.Background(), f.learner.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusAccepted, stored.Status)
	require.NotNil(t, stored.OfferedSkill)
	require.NotNil(t, stored.OfferedSkill.Skill)
	assert.Equal(t, "Go", stored.OfferedSkill.Skill.Name)

	assert.Equal(t, model.NotificationRequestAccepted, f.notifier.last().Kind)
	assert.Equal(t, f.learner.ID, f.notifier.last().RecipientID)
}

func TestRequestService_AcceptWithScheduleAndLocation(t *testing.T) {
	f := newFixture(t)
	req := f.pendingRequest(t, model.FormatFlexible)
	when := f.now.Add(72 * time.Hour)

	_, session, err := f.requests.Respond(context.Background(), f.teacher.ID, req.ID, RespondInput{
		Action:        ActionAccept,
		ScheduledDate: &when,
		Location:      "Library, room 2",
	})
	require.NoError(t, err)

	assert.Equal(t, when, session.ScheduledDate)
	assert.Equal(t, "Library, room 2", session.Location)
	assert.Equal(t, model.FormatInPerson, session.Format)
}

func TestRequestService_AcceptRejectsPastDate(t *testing.T) {
	f := newFixture(t)
	req := f.pendingRequest(t, model.FormatOnline)
	past := f.now.Add(-time.Hour)

	_, _, err := f.requests.Respond(context.Background(), f.teacher.ID, req.ID, RespondInput{Action: ActionAccept, ScheduledDate: &past})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	stored, err := f.requests.Get(context.Background(), f.teacher.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, stored.Status)
}

func TestRequestService_DeclineAndCancelNeverCreateSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.pendingRequest(t, model.FormatOnline)
	declined, session, err := f.requests.Respond(ctx, f.teacher.ID, req.ID, RespondInput{Action: ActionDecline, Message: "busy"})
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, model.RequestStatusDeclined, declined.Status)
	assert.NotNil(t, declined.RespondedAt)

	req = f.pendingRequest(t, model.FormatOnline)
	cancelled, err := f.requests.Cancel(ctx, f.learner.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCancelled, cancelled.Status)

	assert.Equal(t, 0, f.db.CountSessions())
}

func TestRequestService_RespondWrongActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.pendingRequest(t, model.FormatOnline)

	_, _, err := f.requests.Respond(ctx, f.learner.ID, req.ID, RespondInput{Action: ActionAccept})
	require.ErrorIs(t, err, apperrors.ErrAuthorization)

	_, _, err = f.requests.Respond(ctx, f.outsider.ID, req.ID, RespondInput{Action: ActionAccept})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	stored, err := f.requests.Get(ctx, f.teacher.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, stored.Status)
	assert.Equal(t, 0, f.db.CountSessions())
}

func TestRequestService_RespondWrongState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.pendingRequest(t, model.FormatOnline)

	_, _, err := f.requests.Respond(ctx, f.teacher.ID, req.ID, RespondInput{Action: ActionDecline})
	require.NoError(t, err)

	_, _, err = f.requests.Respond(ctx, f.teacher.ID, req.ID, RespondInput{Action: ActionAccept})
	require.ErrorIs(t, err, apperrors.ErrStateConflict)
	assert.Equal(t, 0, f.db.CountSessions())

	_, _, err = f.requests.Respond(ctx, f.teacher.ID, req.ID, RespondInput{Action: "maybe"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRequestService_ExpiredIsLazy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.pendingRequest(t, model.FormatOnline)

	f.now = f.now.Add(model.RequestTTL + time.Minute)

	stored, err := f.requests.Get(ctx, f.teacher.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, stored.Status, "reads never mutate storage")
	assert.Equal(t, model.RequestStatusExpired, stored.Effective)
	assert.False(t, stored.CanRespond(f.now))

	_, _, err = f.requests.Respond(ctx, f.teacher.ID, req.ID, RespondInput{Action: ActionAccept})
	require.ErrorIs(t, err, apperrors.ErrStateConflict)

	received, err := f.requests.ListReceived(ctx, f.teacher.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, model.RequestStatusExpired, received[0].Effective)

	n, err := f.requests.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stored, err = f.requests.Get(ctx, f.teacher.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusExpired, stored.Status)
}

func TestRequestService_CancelIsUnconditional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.pendingRequest(t, model.FormatOnline)

	_, session, err := f.requests.Respond(ctx, f.teacher.ID, req.ID, RespondInput{Action: ActionAccept})
	require.NoError(t, err)

	_, err = f.requests.Cancel(ctx, f.teacher.ID, req.ID)
	require.ErrorIs(t, err, apperrors.ErrAuthorization)

	cancelled, err := f.requests.Cancel(ctx, f.learner.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCancelled, cancelled.Status)

	// сессия остаётся как была
	live, err := f.sessions.Get(ctx, f.learner.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusScheduled, live.Status)
}

func TestRequestService_ListSentAndReceived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pendingRequest(t, model.FormatOnline)

	sent, err := f.requests.ListSent(ctx, f.learner.ID)
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	received, err := f.requests.ListReceived(ctx, f.learner.ID)
	require.NoError(t, err)
	assert.Empty(t, received)

	received, err = f.requests.ListReceived(ctx, f.teacher.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, model.RequestStatusPending, received[0].Effective)
}

// Параллельные ответы: ровно один выигрывает, сессий не больше одной
func TestRequestService_ConcurrentRespond(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.pendingRequest(t, model.FormatOnline)

	actions := []ResponseAction{ActionAccept, ActionDecline, ActionAccept, ActionDecline, ActionAccept, ActionDecline}
	errs := make([]error, len(actions))

	var wg sync.WaitGroup
	for i, action := range actions {
		wg.Add(1)
		go func(i int, action ResponseAction) {
			defer wg.Done()
			_, _, errs[i] = f.requests.Respond(ctx, f.teacher.ID, req.ID, RespondInput{Action: action})
		}(i, action)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrStateConflict)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := f.requests.Get(ctx, f.teacher.ID, req.ID)
	require.NoError(t, err)
	if stored.Status == model.RequestStatusAccepted {
		assert.Equal(t, 1, f.db.CountSessions())
	} else {
		assert.Equal(t, model.RequestStatusDeclined, stored.Status)
		assert.Equal(t, 0, f.db.CountSessions())
	}
}
