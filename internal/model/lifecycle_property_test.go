package model_test

import (
	"testing"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"pgregory.net/rapid"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func drawTime(t *rapid.T, label string) time.Time {
	offset := rapid.Int64Range(-30*24*3600, 30*24*3600).Draw(t, label)
	return base.Add(time.Duration(offset) * time.Second)
}

func drawRequestStatus(t *rapid.T) model.RequestStatus {
	return rapid.SampledFrom([]model.RequestStatus{
		model.RequestStatusPending,
		model.RequestStatusAccepted,
		model.RequestStatusDeclined,
		model.RequestStatusCancelled,
		model.RequestStatusExpired,
	}).Draw(t, "status")
}

// Property: IsExpired is true iff the stored status is pending and now is past the deadline
func TestProperty_IsExpired(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		created := drawTime(t, "created")
		now := drawTime(t, "now")
		r := &model.SwapRequest{
			Status:    drawRequestStatus(t),
			CreatedAt: created,
			ExpiresAt: created.Add(model.RequestTTL),
		}

		want := r.Status == model.RequestStatusPending && now.After(r.ExpiresAt)
		if got := r.IsExpired(now); got != want {
			t.Fatalf("IsExpired(%v) = %v, want %v (status %s, expires %v)", now, got, want, r.Status, r.ExpiresAt)
		}
	})
}

// Property: moving a request off pending clears expiry even past the deadline
func TestProperty_TerminalStatusNeverExpired(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := &model.SwapRequest{
			Status:    model.RequestStatusPending,
			ExpiresAt: base,
		}
		now := base.Add(time.Duration(rapid.Int64Range(1, 1<<40).Draw(t, "after")))
		if !r.IsExpired(now) {
			t.Fatalf("pending request past deadline must be expired")
		}

		r.Status = rapid.SampledFrom([]model.RequestStatus{
			model.RequestStatusAccepted,
			model.RequestStatusDeclined,
			model.RequestStatusCancelled,
		}).Draw(t, "terminal")
		if r.IsExpired(now) {
			t.Fatalf("%s request reported expired", r.Status)
		}
		if r.CanRespond(now) {
			t.Fatalf("%s request can be responded to", r.Status)
		}
	})
}

// Property: CanRespond == pending && !IsExpired, and EffectiveStatus never mutates storage
func TestProperty_CanRespondAndEffectiveStatus(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := &model.SwapRequest{Status: drawRequestStatus(t), ExpiresAt: drawTime(t, "expires")}
		now := drawTime(t, "now")
		stored := r.Status

		if got, want := r.CanRespond(now), r.IsPending() && !r.IsExpired(now); got != want {
			t.Fatalf("CanRespond = %v, want %v", got, want)
		}

		eff := r.EffectiveStatus(now)
		if r.Status != stored {
			t.Fatalf("EffectiveStatus changed stored status to %s", r.Status)
		}
		if r.IsExpired(now) && eff != model.RequestStatusExpired {
			t.Fatalf("expired request has effective status %s", eff)
		}
		if !r.IsExpired(now) && eff != stored {
			t.Fatalf("effective status %s differs from stored %s", eff, stored)
		}
	})
}

// Property: CanStart holds exactly inside [scheduled, scheduled+duration] for scheduled sessions
func TestProperty_CanStartWindow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := &model.SwapSession{
			Status: rapid.SampledFrom([]model.SessionStatus{
				model.SessionStatusScheduled,
				model.SessionStatusInProgress,
				model.SessionStatusCompleted,
				model.SessionStatusCancelled,
				model.SessionStatusNoShow,
			}).Draw(t, "status"),
			ScheduledDate:   drawTime(t, "scheduled"),
			DurationMinutes: rapid.IntRange(1, 480).Draw(t, "duration"),
		}
		now := drawTime(t, "now")

		end := s.ScheduledDate.Add(time.Duration(s.DurationMinutes) * time.Minute)
		if !s.EndTime().Equal(end) {
			t.Fatalf("EndTime = %v, want %v", s.EndTime(), end)
		}

		want := s.Status == model.SessionStatusScheduled && !now.Before(s.ScheduledDate) && !now.After(end)
		if got := s.CanStart(now); got != want {
			t.Fatalf("CanStart(%v) = %v, want %v", now, got, want)
		}

		if got, want := s.IsUpcoming(now), s.Status == model.SessionStatusScheduled && s.ScheduledDate.After(now); got != want {
			t.Fatalf("IsUpcoming = %v, want %v", got, want)
		}
	})
}

// Property: counterpart is symmetric for both roles and absent for outsiders
func TestProperty_Counterpart(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		teacher := rapid.Int64Range(1, 1000).Draw(t, "teacher")
		learner := rapid.Int64Range(1001, 2000).Draw(t, "learner")
		outsider := rapid.Int64Range(2001, 3000).Draw(t, "outsider")
		s := &model.SwapSession{TeacherID: teacher, LearnerID: learner}

		if other, ok := s.Counterpart(teacher); !ok || other != learner {
			t.Fatalf("teacher counterpart = %d, %v", other, ok)
		}
		if other, ok := s.Counterpart(learner); !ok || other != teacher {
			t.Fatalf("learner counterpart = %d, %v", other, ok)
		}
		if _, ok := s.Counterpart(outsider); ok {
			t.Fatalf("outsider has a counterpart")
		}
		if s.RoleOf(outsider) != model.RoleNone {
			t.Fatalf("outsider has a role")
		}
	})
}
