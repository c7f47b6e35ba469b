package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SkillCategory struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Skill struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPopular   bool      `json:"is_popular"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProficiencyLevel string

const (
	ProficiencyBeginner     ProficiencyLevel = "beginner"
	ProficiencyIntermediate ProficiencyLevel = "intermediate"
	ProficiencyAdvanced     ProficiencyLevel = "advanced"
	ProficiencyExpert       ProficiencyLevel = "expert"
)

func (p ProficiencyLevel) Valid() bool {
	switch p {
	case ProficiencyBeginner, ProficiencyIntermediate, ProficiencyAdvanced, ProficiencyExpert:
		return true
	}
	return false
}

// Preference is the teaching or learning mode a user accepts
type Preference string

const (
	PreferenceOnline   Preference = "online"
	PreferenceInPerson Preference = "in_person"
	PreferenceBoth     Preference = "both"
)

func (p Preference) Valid() bool {
	switch p {
	case PreferenceOnline, PreferenceInPerson, PreferenceBoth:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent:
		return true
	}
	return false
}

// OfferedSkill is a catalog skill a user can teach
type OfferedSkill struct {
	ID                    int64            `json:"id"`
	UserID                int64            `json:"user_id"`
	SkillID               int64            `json:"skill_id"`
	ProficiencyLevel      ProficiencyLevel `json:"proficiency_level"`
	Description           string           `json:"description"`
	YearsOfExperience     int              `json:"years_of_experience"`
	IsActive              bool             `json:"is_active"`
	TeachingPreference    Preference       `json:"teaching_preference"`
	MaxStudentsPerSession int              `json:"max_students_per_session"`
	TotalSessions         int              `json:"total_sessions"`
	AverageRating         decimal.Decimal  `json:"average_rating"`
	CreatedAt             time.Time        `json:"created_at"`

	Skill *Skill `json:"skill,omitempty"`
}

// DesiredSkill is a catalog skill a user wants to learn
type DesiredSkill struct {
	ID                 int64            `json:"id"`
	UserID             int64            `json:"user_id"`
	SkillID            int64            `json:"skill_id"`
	Urgency            Urgency          `json:"urgency"`
	Description        string           `json:"description"`
	CurrentLevel       ProficiencyLevel `json:"current_level"`
	TargetLevel        ProficiencyLevel `json:"target_level"`
	LearningPreference Preference       `json:"learning_preference"`
	IsActive           bool             `json:"is_active"`
	CreatedAt          time.Time        `json:"created_at"`

	Skill *Skill `json:"skill,omitempty"`
}

// SkillMatch is an externally fed ranking row. Nothing here computes the score.
type SkillMatch struct {
	ID                 int64           `json:"id"`
	TeacherID          int64           `json:"teacher_id"`
	LearnerID          int64           `json:"learner_id"`
	OfferedSkillID     int64           `json:"offered_skill_id"`
	DesiredSkillID     int64           `json:"desired_skill_id"`
	CompatibilityScore decimal.Decimal `json:"compatibility_score"`
	IsMutual           bool            `json:"is_mutual"`
	IsDismissed        bool            `json:"is_dismissed"`
	CreatedAt          time.Time       `json:"created_at"`
}
