package controller

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Callback data: prefix + id
const (
	AcceptRequest  = "req_accept:"  // req_accept:request_id
	DeclineRequest = "req_decline:" // req_decline:request_id
	StartSession   = "sess_start:"  // sess_start:session_id
	EndSession     = "sess_end:"    // sess_end:session_id
	CancelSession  = "sess_cancel:" // sess_cancel:session_id
)

// answerCallback отвечает на callback query; alert показывает всплывающее окно
func answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
}

// messageFromCallback извлекает сообщение из callback query
func messageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// parseIDFromCallback извлекает ID из callback data
// Например: "req_accept:123" -> 123
func parseIDFromCallback(data string) (int64, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid callback data format")
	}
	return strconv.ParseInt(parts[1], 10, 64)
}

// errorMessage переводит ошибку сервиса в текст для пользователя
func errorMessage(err error) string {
	appErr, ok := apperrors.As(err)
	if !ok {
		return "❌ Произошла ошибка. Попробуйте позже."
	}

	switch appErr.Kind {
	case apperrors.KindNotFound:
		return "❌ Не найдено"
	case apperrors.KindAuthorization:
		return "❌ У вас нет доступа к этому действию"
	case apperrors.KindStateConflict:
		return "⚠️ Статус уже изменился: " + appErr.Message
	default:
		return "❌ " + appErr.Message
	}
}

func send(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	b.SendMessage(ctx, params)
}
