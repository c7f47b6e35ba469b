package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	TelegramID *int64    `json:"telegram_id"` // nil, если Telegram не привязан
	CreatedAt  time.Time `json:"created_at"`
}

// FullName falls back to the username
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

type Department struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type Branch struct {
	ID           int64  `json:"id"`
	DepartmentID int64  `json:"department_id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	IsActive     bool   `json:"is_active"`
}

// Profile extends a user with campus details
type Profile struct {
	UserID            int64     `json:"user_id"`
	UniversityEmail   string    `json:"university_email"`
	DepartmentID      *int64    `json:"department_id"`
	BranchID          *int64    `json:"branch_id"`
	Year              string    `json:"year"`
	Bio               string    `json:"bio"`
	Availability      string    `json:"availability"`
	IsVerified        bool      `json:"is_verified"`
	PreferInPerson    bool      `json:"prefer_in_person"`
	PreferOnline      bool      `json:"prefer_online"`
	NotificationEmail bool      `json:"notification_email"`
	NotificationInApp bool      `json:"notification_in_app"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Считается по отзывам при чтении
	Stats *ProfileStats `json:"stats,omitempty"`
}

// ProfileStats aggregates public reviews received by a user
type ProfileStats struct {
	SessionsTaught         int             `json:"total_sessions_taught"`
	SessionsLearned        int             `json:"total_sessions_learned"`
	AverageRatingAsTeacher decimal.Decimal `json:"average_rating_as_teacher"`
	AverageRatingAsLearner decimal.Decimal `json:"average_rating_as_learner"`
}

// CompletionPercentage counts filled profile fields
func (p *Profile) CompletionPercentage() int {
	filled := []bool{
		p.UniversityEmail != "",
		p.DepartmentID != nil,
		p.BranchID != nil,
		p.Year != "",
		p.Bio != "",
		p.Availability != "",
	}

	completed := 0
	for _, ok := range filled {
		if ok {
			completed++
		}
	}
	return completed * 100 / len(filled)
}

// IsUniversityEmail checks the campus address format
func IsUniversityEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	return strings.HasSuffix(email, ".edu") ||
		strings.Contains(email, "@university.") ||
		strings.Contains(email, "@college.")
}
