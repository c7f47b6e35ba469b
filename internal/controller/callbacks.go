package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/skill_swap/internal/controller/formatting"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleCallbackQuery маршрутизирует нажатия на inline кнопки
func (c *BotController) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	data := callback.Data
	switch {
	case strings.HasPrefix(data, AcceptRequest):
		c.handleRespond(ctx, b, callback, service.ActionAccept)
	case strings.HasPrefix(data, DeclineRequest):
		c.handleRespond(ctx, b, callback, service.ActionDecline)
	case strings.HasPrefix(data, StartSession):
		c.handleSessionAction(ctx, b, callback, c.sessions.Start)
	case strings.HasPrefix(data, EndSession):
		c.handleSessionAction(ctx, b, callback, c.sessions.End)
	case strings.HasPrefix(data, CancelSession):
		c.handleSessionAction(ctx, b, callback, c.sessions.Cancel)
	default:
		c.logger.Warn("Unknown callback",
			zap.String("data", data),
			zap.Int64("telegram_id", callback.From.ID))
		answerCallback(ctx, b, callback.ID, "❌ Неизвестная команда", false)
	}
}

// callbackUser разбирает id из callback data и находит пользователя
func (c *BotController) callbackUser(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) (*model.User, int64, bool) {
	id, err := parseIDFromCallback(callback.Data)
	if err != nil {
		answerCallback(ctx, b, callback.ID, "❌ Неверный формат", true)
		return nil, 0, false
	}

	user := c.currentUser(ctx, callback.From.ID)
	if user == nil {
		answerCallback(ctx, b, callback.ID, notLinkedText, true)
		return nil, 0, false
	}
	return user, id, true
}

// handleRespond принимает или отклоняет заявку и обновляет сообщение с кнопками
func (c *BotController) handleRespond(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, action service.ResponseAction) {
	user, requestID, ok := c.callbackUser(ctx, b, callback)
	if !ok {
		return
	}

	req, session, err := c.requests.Respond(ctx, user.ID, requestID, service.RespondInput{Action: action})
	if err != nil {
		c.logger.Warn("Failed to respond from telegram",
			zap.Int64("request_id", requestID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		answerCallback(ctx, b, callback.ID, errorMessage(err), true)
		return
	}

	text := fmt.Sprintf("%s\n\n%s", requestText(req), formatting.RequestStatus(req.Status))
	if session != nil {
		text += fmt.Sprintf("\n📅 Сессия назначена на %s", formatting.FormatDateTime(session.ScheduledDate))
	}

	answerCallback(ctx, b, callback.ID, formatting.RequestStatus(req.Status).String(), false)
	c.editCallbackMessage(ctx, b, callback, text)
}

type sessionTransition func(ctx context.Context, actorID, sessionID int64) (*model.SwapSession, error)

func (c *BotController) handleSessionAction(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, transition sessionTransition) {
	user, sessionID, ok := c.callbackUser(ctx, b, callback)
	if !ok {
		return
	}

	session, err := transition(ctx, user.ID, sessionID)
	if err != nil {
		c.logger.Warn("Failed to change session from telegram", zap.Int64("session_id", sessionID), zap.Error(err))
		answerCallback(ctx, b, callback.ID, errorMessage(err), true)
		return
	}

	answerCallback(ctx, b, callback.ID, formatting.SessionStatus(session.Status).String(), false)
	c.editCallbackMessage(ctx, b, callback, sessionText(session, user.ID))
}

// editCallbackMessage заменяет текст и убирает кнопки
func (c *BotController) editCallbackMessage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, text string) {
	msg := messageFromCallback(callback)
	if msg == nil {
		return
	}
	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      text,
	})
}
