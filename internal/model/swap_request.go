package model

import "time"

// RequestStatus is the stored state of a skill swap request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusDeclined  RequestStatus = "declined"
	RequestStatusCancelled RequestStatus = "cancelled"
	RequestStatusExpired   RequestStatus = "expired"
)

// SessionFormat describes how a swap session takes place
type SessionFormat string

const (
	FormatOnline   SessionFormat = "online"
	FormatInPerson SessionFormat = "in_person"
	FormatFlexible SessionFormat = "flexible" // only valid on requests
)

const (
	// RequestTTL is how long a request stays answerable after creation
	RequestTTL = 7 * 24 * time.Hour

	DefaultProposedDuration = 60 // минуты
)

// SwapRequest represents a learner asking a user to teach one of their offered skills
type SwapRequest struct {
	ID               int64         `json:"id"`
	RequesterID      int64         `json:"requester_id"`
	RecipientID      int64         `json:"recipient_id"`
	OfferedSkillID   int64         `json:"offered_skill_id"`
	DesiredSkillID   *int64        `json:"desired_skill_id"`
	Status           RequestStatus `json:"status"`
	Message          string        `json:"message"`
	ProposedDuration int           `json:"proposed_duration"`
	ProposedFormat   SessionFormat `json:"proposed_format"`
	ProposedLocation string        `json:"proposed_location"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	ExpiresAt        time.Time     `json:"expires_at"`
	RespondedAt      *time.Time    `json:"responded_at"`
	ResponseMessage  string        `json:"response_message"`

	// Не из БД
	Effective    RequestStatus `json:"effective_status,omitempty"`
	OfferedSkill *OfferedSkill `json:"offered_skill,omitempty"`
}

// IsPending checks the stored status only
func (r *SwapRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// IsExpired reports a pending request whose deadline has passed.
// Storage may still say pending; callers must check both.
func (r *SwapRequest) IsExpired(now time.Time) bool {
	return r.Status == RequestStatusPending && now.After(r.ExpiresAt)
}

// CanRespond checks if the recipient may still accept or decline
func (r *SwapRequest) CanRespond(now time.Time) bool {
	return r.IsPending() && !r.IsExpired(now)
}

// EffectiveStatus layers lazy expiry over the stored status without mutating it
func (r *SwapRequest) EffectiveStatus(now time.Time) RequestStatus {
	if r.IsExpired(now) {
		return RequestStatusExpired
	}
	return r.Status
}

// IsParticipant checks if the user sent or received the request
func (r *SwapRequest) IsParticipant(userID int64) bool {
	return r.RequesterID == userID || r.RecipientID == userID
}

// ValidRequestFormat checks the formats a request may propose
func ValidRequestFormat(f SessionFormat) bool {
	switch f {
	case FormatOnline, FormatInPerson, FormatFlexible:
		return true
	}
	return false
}
