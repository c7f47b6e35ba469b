package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/model"
)

// Интерфейсы хранилищ. Реализуются репозиториями Postgres и memstore в тестах.

// Transactor runs fn in one storage transaction carried by ctx
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	LinkTelegram(ctx context.Context, userID, telegramID int64) error
	// Search matches username or first name case-insensitively
	Search(ctx context.Context, term string, limit int) ([]*model.User, error)
}

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*model.Profile, error)
	Upsert(ctx context.Context, p *model.Profile) error
	GetBranch(ctx context.Context, id int64) (*model.Branch, error)
	ListDepartments(ctx context.Context) ([]*model.Department, error)
	// ListBranches returns active branches of an active department
	ListBranches(ctx context.Context, departmentID int64) ([]*model.Branch, error)
}

type CatalogStore interface {
	ListCategories(ctx context.Context) ([]*model.SkillCategory, error)
	GetSkill(ctx context.Context, id int64) (*model.Skill, error)
	ListSkillsByCategory(ctx context.Context, categoryID int64) ([]*model.Skill, error)
	SearchSkills(ctx context.Context, term string, limit int) ([]*model.Skill, error)

	GetOfferedSkill(ctx context.Context, id int64) (*model.OfferedSkill, error)
	ListOfferedByUser(ctx context.Context, userID int64) ([]*model.OfferedSkill, error)
	CreateOffered(ctx context.Context, o *model.OfferedSkill) error
	ToggleOffered(ctx context.Context, id, userID int64) (active bool, found bool, err error)
	DeleteOffered(ctx context.Context, id, userID int64) (bool, error)

	GetDesiredSkill(ctx context.Context, id int64) (*model.DesiredSkill, error)
	ListDesiredByUser(ctx context.Context, userID int64) ([]*model.DesiredSkill, error)
	CreateDesired(ctx context.Context, d *model.DesiredSkill) error
	ToggleDesired(ctx context.Context, id, userID int64) (active bool, found bool, err error)
	DeleteDesired(ctx context.Context, id, userID int64) (bool, error)
}

// CatalogCache is an optional read-through layer; a miss returns nil, nil
type CatalogCache interface {
	GetCategories(ctx context.Context) ([]*model.SkillCategory, error)
	SetCategories(ctx context.Context, categories []*model.SkillCategory) error
	GetSkillsByCategory(ctx context.Context, categoryID int64) ([]*model.Skill, error)
	SetSkillsByCategory(ctx context.Context, categoryID int64, skills []*model.Skill) error
	GetSkill(ctx context.Context, id int64) (*model.Skill, error)
	SetSkill(ctx context.Context, skill *model.Skill) error
}

type RequestStore interface {
	// CreateIfNoPending returns false when the pair already has a pending request
	CreateIfNoPending(ctx context.Context, req *model.SwapRequest) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.SwapRequest, error)
	ListByRequester(ctx context.Context, userID int64) ([]*model.SwapRequest, error)
	ListByRecipient(ctx context.Context, userID int64) ([]*model.SwapRequest, error)
	// Respond returns false when the request is no longer pending or has expired
	Respond(ctx context.Context, id int64, status model.RequestStatus, message string, at time.Time) (bool, error)
	Cancel(ctx context.Context, id, requesterID int64, at time.Time) (bool, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type SessionStore interface {
	Create(ctx context.Context, s *model.SwapSession) error
	GetByID(ctx context.Context, id int64) (*model.SwapSession, error)
	GetByRequestID(ctx context.Context, requestID int64) (*model.SwapSession, error)
	ListByParticipant(ctx context.Context, userID int64) ([]*model.SwapSession, error)
	ListUpcoming(ctx context.Context, userID int64, now time.Time) ([]*model.SwapSession, error)
	ListHistory(ctx context.Context, userID int64, now time.Time) ([]*model.SwapSession, error)
	// Transition returns false when the current status is not one of from
	Transition(ctx context.Context, id int64, to model.SessionStatus, at time.Time, from ...model.SessionStatus) (bool, error)
	Reschedule(ctx context.Context, s *model.SwapSession, at time.Time) (bool, error)
	// UpdateNotes writes only the notes column of role; summary is left as is when nil
	UpdateNotes(ctx context.Context, id int64, role model.Role, notes string, summary *string, at time.Time) error
}

type ReviewStore interface {
	Create(ctx context.Context, rv *model.SessionReview) error
	Exists(ctx context.Context, sessionID, reviewerID int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.SessionReview, error)
	Update(ctx context.Context, rv *model.SessionReview) error
	ListByReviewer(ctx context.Context, userID int64) ([]*model.SessionReview, error)
	ListByReviewee(ctx context.Context, userID int64) ([]*model.SessionReview, error)
	StatsFor(ctx context.Context, userID int64) (*model.ProfileStats, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, userID int64, limit int) ([]*model.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, id, userID int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type MatchStore interface {
	ListForLearner(ctx context.Context, learnerID int64) ([]*model.SkillMatch, error)
	Dismiss(ctx context.Context, id, learnerID int64) (bool, error)
}

// Notifier is the fire-and-forget event sink used by the lifecycle services
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification)
}

// Deliverer pushes a stored notification to an external channel
type Deliverer interface {
	Deliver(ctx context.Context, user *model.User, n *model.Notification) error
}
