package model

import "time"

type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "scheduled"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
	SessionStatusNoShow     SessionStatus = "no_show" // выставляется только вручную
)

// DefaultScheduleDelay is used when acceptance does not carry a date
const DefaultScheduleDelay = 24 * time.Hour

// Role is a participant's fixed side of a session
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleLearner Role = "learner"
	RoleNone    Role = ""
)

// SwapSession is created when a request is accepted.
// Teacher is the request recipient, learner is the requester.
type SwapSession struct {
	ID              int64         `json:"id"`
	RequestID       int64         `json:"request_id"`
	TeacherID       int64         `json:"teacher_id"`
	LearnerID       int64         `json:"learner_id"`
	SkillID         int64         `json:"skill_id"`
	ScheduledDate   time.Time     `json:"scheduled_date"`
	DurationMinutes int           `json:"duration_minutes"`
	Format          SessionFormat `json:"format"`
	Location        string        `json:"location"`
	MeetingLink     string        `json:"meeting_link"`
	Status          SessionStatus `json:"status"`
	StartedAt       *time.Time    `json:"started_at"`
	EndedAt         *time.Time    `json:"ended_at"`
	ActualDuration  *int          `json:"actual_duration"`
	TeacherNotes    string        `json:"teacher_notes"`
	LearnerNotes    string        `json:"learner_notes"`
	SessionSummary  string        `json:"session_summary"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	// Не из БД
	Skill *Skill `json:"skill,omitempty"`
}

// IsUpcoming checks that the session is scheduled in the future
func (s *SwapSession) IsUpcoming(now time.Time) bool {
	return s.Status == SessionStatusScheduled && s.ScheduledDate.After(now)
}

func (s *SwapSession) IsOngoing() bool {
	return s.Status == SessionStatusInProgress
}

// CanStart is advisory: Start does not enforce the window
func (s *SwapSession) CanStart(now time.Time) bool {
	return s.Status == SessionStatusScheduled &&
		!now.Before(s.ScheduledDate) &&
		!now.After(s.EndTime())
}

// EndTime returns the planned end of the session
func (s *SwapSession) EndTime() time.Time {
	return s.ScheduledDate.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// RoleOf returns the fixed role of the user in this session
func (s *SwapSession) RoleOf(userID int64) Role {
	switch userID {
	case s.TeacherID:
		return RoleTeacher
	case s.LearnerID:
		return RoleLearner
	}
	return RoleNone
}

func (s *SwapSession) IsParticipant(userID int64) bool {
	return s.RoleOf(userID) != RoleNone
}

// Counterpart returns the other participant, false for outsiders
func (s *SwapSession) Counterpart(userID int64) (int64, bool) {
	switch s.RoleOf(userID) {
	case RoleTeacher:
		return s.LearnerID, true
	case RoleLearner:
		return s.TeacherID, true
	}
	return 0, false
}

// ResolveSessionFormat turns a request's proposed format into a concrete session format
func ResolveSessionFormat(proposed SessionFormat, location string) SessionFormat {
	switch proposed {
	case FormatOnline, FormatInPerson:
		return proposed
	}
	if location != "" {
		return FormatInPerson
	}
	return FormatOnline
}
