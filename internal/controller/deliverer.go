package controller

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skill_swap/internal/controller/keyboard"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/go-telegram/bot"
)

// TelegramDeliverer отправляет уведомления в привязанный чат
type TelegramDeliverer struct {
	bot *bot.Bot
}

func NewTelegramDeliverer(b *bot.Bot) *TelegramDeliverer {
	return &TelegramDeliverer{bot: b}
}

var notificationEmoji = map[model.NotificationKind]string{
	model.NotificationSkillRequest:     "📨",
	model.NotificationRequestAccepted:  "✅",
	model.NotificationRequestDeclined:  "🚫",
	model.NotificationRequestCancelled: "❌",
	model.NotificationSessionScheduled: "🗓",
	model.NotificationSessionStarted:   "▶️",
	model.NotificationSessionCompleted: "✔️",
	model.NotificationSessionCancelled: "❌",
	model.NotificationNewReview:        "⭐️",
}

func notificationText(n *model.Notification) string {
	emoji, ok := notificationEmoji[n.Kind]
	if !ok {
		emoji = "🔔"
	}
	if n.Message == "" {
		return emoji + " " + n.Title
	}
	return fmt.Sprintf("%s %s\n\n%s", emoji, n.Title, n.Message)
}

// Deliver sends n to the user's chat. New requests get accept/decline buttons.
func (d *TelegramDeliverer) Deliver(ctx context.Context, user *model.User, n *model.Notification) error {
	if user.TelegramID == nil {
		return nil
	}

	params := &bot.SendMessageParams{
		ChatID: *user.TelegramID,
		Text:   notificationText(n),
	}
	if n.Kind == model.NotificationSkillRequest && n.RelatedObjectID != nil {
		params.ReplyMarkup = keyboard.NewBuilder().Row(
			keyboard.Button("✅ Принять", fmt.Sprintf("%s%d", AcceptRequest, *n.RelatedObjectID)),
			keyboard.Button("❌ Отклонить", fmt.Sprintf("%s%d", DeclineRequest, *n.RelatedObjectID)),
		).Build()
	}

	if _, err := d.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
