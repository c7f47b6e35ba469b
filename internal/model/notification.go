package model

import "time"

type NotificationKind string

const (
	NotificationSkillRequest     NotificationKind = "skill_request"
	NotificationRequestAccepted  NotificationKind = "request_accepted"
	NotificationRequestDeclined  NotificationKind = "request_declined"
	NotificationRequestCancelled NotificationKind = "request_cancelled"
	NotificationSessionScheduled NotificationKind = "session_scheduled"
	NotificationSessionStarted   NotificationKind = "session_started"
	NotificationSessionCompleted NotificationKind = "session_completed"
	NotificationSessionCancelled NotificationKind = "session_cancelled"
	NotificationNewReview        NotificationKind = "new_review"
	NotificationSystem           NotificationKind = "system"
)

type Notification struct {
	ID              int64            `json:"id"`
	RecipientID     int64            `json:"recipient_id"`
	Kind            NotificationKind `json:"kind"`
	Title           string           `json:"title"`
	Message         string           `json:"message"`
	IsRead          bool             `json:"is_read"`
	RelatedUserID   *int64           `json:"related_user_id"`
	RelatedObjectID *int64           `json:"related_object_id"`
	CreatedAt       time.Time        `json:"created_at"`
}
