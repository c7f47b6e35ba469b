package service

import (
	"context"
	"fmt"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/monitoring"
	"go.uber.org/zap"
)

// NotificationListLimit is how many latest notifications a user sees
const NotificationListLimit = 20

type NotificationService struct {
	notifications NotificationStore
	users         UserStore
	deliverer     Deliverer
	logger        *zap.Logger
}

func NewNotificationService(notifications NotificationStore, users UserStore, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		logger:        logger,
	}
}

// SetDeliverer подключает внешний канал доставки (Telegram).
// Вызывается при старте до обработки запросов.
func (s *NotificationService) SetDeliverer(d Deliverer) {
	s.deliverer = d
}

// Notify сохраняет уведомление и пытается доставить его.
// Ошибки только логируются: событие не должно ломать переход состояния.
func (s *NotificationService) Notify(ctx context.Context, n *model.Notification) {
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Error("Failed to store notification",
			zap.Int64("recipient_id", n.RecipientID),
			zap.String("kind", string(n.Kind)),
			zap.Error(err),
		)
		return
	}

	if s.deliverer == nil {
		return
	}

	user, err := s.users.GetByID(ctx, n.RecipientID)
	if err != nil {
		s.logger.Error("Failed to load notification recipient", zap.Int64("recipient_id", n.RecipientID), zap.Error(err))
		return
	}
	if user == nil || user.TelegramID == nil {
		return
	}

	if err := s.deliverer.Deliver(ctx, user, n); err != nil {
		monitoring.RecordNotificationDelivery("telegram", "error")
		s.logger.Warn("Failed to deliver notification",
			zap.Int64("notification_id", n.ID),
			zap.Int64("recipient_id", n.RecipientID),
			zap.Error(err),
		)
		return
	}
	monitoring.RecordNotificationDelivery("telegram", "ok")
}

// List получает последние уведомления пользователя
func (s *NotificationService) List(ctx context.Context, userID int64) ([]*model.Notification, error) {
	notifications, err := s.notifications.ListByRecipient(ctx, userID, NotificationListLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// MarkRead отмечает уведомление прочитанным; чужое уведомление не найдено
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	ok, err := s.notifications.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if !ok {
		return apperrors.NotFound("notification")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return n, nil
}

// notification собирает событие жизненного цикла
func notification(kind model.NotificationKind, recipientID, relatedUserID, relatedObjectID int64, title, message string) *model.Notification {
	return &model.Notification{
		RecipientID:     recipientID,
		Kind:            kind,
		Title:           title,
		Message:         message,
		RelatedUserID:   &relatedUserID,
		RelatedObjectID: &relatedObjectID,
	}
}
