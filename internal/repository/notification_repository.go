package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	*base.Repository
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{Repository: base.NewRepository(pool)}
}

// Create сохраняет уведомление
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, kind, title, message, related_user_id, related_object_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		n.RecipientID,
		n.Kind,
		n.Title,
		n.Message,
		n.RelatedUserID,
		n.RelatedObjectID,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// ListByRecipient получает последние уведомления пользователя
func (r *NotificationRepository) ListByRecipient(ctx context.Context, userID int64, limit int) ([]*model.Notification, error) {
	query := `
		SELECT id, recipient_id, kind, title, message, is_read, related_user_id, related_object_id, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Kind,
			&n.Title,
			&n.Message,
			&n.IsRead,
			&n.RelatedUserID,
			&n.RelatedObjectID,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// CountUnread подсчитывает непрочитанные уведомления
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead отмечает одно уведомление прочитанным
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return affected == 1, nil
}

// MarkAllRead отмечает все уведомления пользователя прочитанными
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	affected, err := r.ExecAffected(ctx, `UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return affected, nil
}
