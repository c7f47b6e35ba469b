package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/skill_swap/internal/controller/formatting"
	"github.com/Freeeeeet/skill_swap/internal/controller/keyboard"
	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const notLinkedText = "❌ Аккаунт не привязан. Используйте /start"

// HandleStart регистрирует пользователя или привязывает чат по токену из профиля
func (c *BotController) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	token, ok := startToken(update.Message.Text)
	if !ok {
		return
	}

	from := update.Message.From
	chatID := update.Message.Chat.ID

	var (
		user *model.User
		err  error
	)
	if token != "" {
		user, err = c.linkByToken(ctx, token, from.ID)
	} else {
		user, err = c.users.GetByTelegramID(ctx, from.ID)
		if err == nil && user == nil {
			user, err = c.register(ctx, from)
		}
	}
	if err != nil {
		c.logger.Error("Failed to start", zap.Int64("telegram_id", from.ID), zap.Error(err))
		send(ctx, b, chatID, errorMessage(err), nil)
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это Campus Skill Swap: учите других тому, что умеете, и учитесь сами.\n\n"+
			"Сюда будут приходить новые заявки и изменения сессий.\n\n"+
			"/requests - Входящие заявки\n"+
			"/sessions - Ближайшие сессии\n"+
			"/help - Справка",
		user.FullName(),
	)
	send(ctx, b, chatID, welcomeText, nil)
}

// startToken разбирает "/start" и "/start <token>"; "/startfoo" не команда
func startToken(text string) (string, bool) {
	if text == "/start" {
		return "", true
	}
	if rest, ok := strings.CutPrefix(text, "/start "); ok {
		return strings.TrimSpace(rest), true
	}
	return "", false
}

func (c *BotController) linkByToken(ctx context.Context, token string, telegramID int64) (*model.User, error) {
	userID, err := c.auth.ValidateLinkToken(token)
	if err != nil {
		return nil, apperrors.Validation("Ссылка недействительна или устарела. Получите новую в профиле.", nil)
	}
	if err := c.users.LinkTelegram(ctx, userID, telegramID); err != nil {
		return nil, err
	}
	return c.users.Get(ctx, userID)
}

// register создаёт пользователя по данным Telegram. Занятое имя заменяется на tg_<id>.
func (c *BotController) register(ctx context.Context, from *models.User) (*model.User, error) {
	fallback := fmt.Sprintf("tg_%d", from.ID)
	username := from.Username
	if username == "" {
		username = fallback
	}

	in := service.RegisterInput{Username: username, FirstName: from.FirstName, LastName: from.LastName}
	user, err := c.users.Register(ctx, in)
	if apperrors.KindOf(err) == apperrors.KindValidation && username != fallback {
		in.Username = fallback
		user, err = c.users.Register(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	if err := c.users.LinkTelegram(ctx, user.ID, from.ID); err != nil {
		return nil, err
	}
	user.TelegramID = &from.ID
	return user, nil
}

// HandleHelp обрабатывает команду /help
func (c *BotController) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"/start - Начать работу или привязать аккаунт\n" +
		"/requests - Входящие заявки, их можно принять или отклонить\n" +
		"/sessions - Ближайшие сессии, их можно начать, завершить или отменить\n" +
		"/help - Показать эту справку\n\n" +
		"Заявки создаются и отзываются на сайте."

	send(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// currentUser находит пользователя по Telegram ID; nil значит аккаунт не привязан
func (c *BotController) currentUser(ctx context.Context, telegramID int64) *model.User {
	user, err := c.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		c.logger.Error("Failed to get user by telegram id", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil
	}
	return user
}

// HandleRequests показывает входящие заявки, ожидающие ответа
func (c *BotController) HandleRequests(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	user := c.currentUser(ctx, update.Message.From.ID)
	if user == nil {
		send(ctx, b, chatID, notLinkedText, nil)
		return
	}

	received, err := c.requests.ListReceived(ctx, user.ID)
	if err != nil {
		c.logger.Error("Failed to list received requests", zap.Int64("user_id", user.ID), zap.Error(err))
		send(ctx, b, chatID, errorMessage(err), nil)
		return
	}

	pending := 0
	for _, req := range received {
		if req.Effective != model.RequestStatusPending {
			continue
		}
		pending++

		kb := keyboard.NewBuilder().Row(
			keyboard.Button("✅ Принять", fmt.Sprintf("%s%d", AcceptRequest, req.ID)),
			keyboard.Button("❌ Отклонить", fmt.Sprintf("%s%d", DeclineRequest, req.ID)),
		)
		send(ctx, b, chatID, requestText(req), kb.Build())
	}

	if pending == 0 {
		send(ctx, b, chatID, "📭 Нет заявок, ожидающих ответа.", nil)
	}
}

// HandleSessions показывает запланированные и идущие сессии
func (c *BotController) HandleSessions(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	user := c.currentUser(ctx, update.Message.From.ID)
	if user == nil {
		send(ctx, b, chatID, notLinkedText, nil)
		return
	}

	sessions, err := c.sessions.List(ctx, user.ID)
	if err != nil {
		c.logger.Error("Failed to list sessions", zap.Int64("user_id", user.ID), zap.Error(err))
		send(ctx, b, chatID, errorMessage(err), nil)
		return
	}

	active := 0
	for _, session := range sessions {
		kb := keyboard.NewBuilder()
		switch session.Status {
		case model.SessionStatusScheduled:
			kb.Row(
				keyboard.Button("▶️ Начать", fmt.Sprintf("%s%d", StartSession, session.ID)),
				keyboard.Button("❌ Отменить", fmt.Sprintf("%s%d", CancelSession, session.ID)),
			)
		case model.SessionStatusInProgress:
			kb.Row(keyboard.Button("⏹ Завершить", fmt.Sprintf("%s%d", EndSession, session.ID)))
		default:
			continue
		}
		if session.MeetingLink != "" {
			kb.Row(keyboard.URLButton("🔗 Подключиться", session.MeetingLink))
		}
		active++
		send(ctx, b, chatID, sessionText(session, user.ID), kb.Build())
	}

	if active == 0 {
		send(ctx, b, chatID, "📭 Нет запланированных сессий.", nil)
	}
}

func skillName(req *model.SwapRequest) string {
	if req.OfferedSkill != nil && req.OfferedSkill.Skill != nil {
		return req.OfferedSkill.Skill.Name
	}
	return fmt.Sprintf("навык #%d", req.OfferedSkillID)
}

func requestText(req *model.SwapRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📨 Заявка #%d\n\n", req.ID)
	fmt.Fprintf(&sb, "Навык: %s\n", skillName(req))
	fmt.Fprintf(&sb, "Длительность: %s, формат: %s\n",
		formatting.FormatDuration(req.ProposedDuration), formatting.Format(req.ProposedFormat))
	if req.ProposedLocation != "" {
		fmt.Fprintf(&sb, "Место: %s\n", req.ProposedLocation)
	}
	if req.Message != "" {
		fmt.Fprintf(&sb, "\n💬 %s\n", req.Message)
	}
	fmt.Fprintf(&sb, "\nОтветить до: %s", formatting.FormatDateTime(req.ExpiresAt))
	return sb.String()
}

func sessionText(session *model.SwapSession, userID int64) string {
	role := "🎓 Вы учитесь"
	if session.RoleOf(userID) == model.RoleTeacher {
		role = "👨‍🏫 Вы учите"
	}
	skill := fmt.Sprintf("навык #%d", session.SkillID)
	if session.Skill != nil {
		skill = session.Skill.Name
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", role, skill)
	fmt.Fprintf(&sb, "%s\n", formatting.SessionStatus(session.Status))
	fmt.Fprintf(&sb, "📅 %s, %s\n", formatting.FormatDateTime(session.ScheduledDate),
		formatting.FormatTimeRange(session.ScheduledDate, session.EndTime()))
	fmt.Fprintf(&sb, "Формат: %s", formatting.Format(session.Format))
	if session.Location != "" {
		fmt.Fprintf(&sb, "\nМесто: %s", session.Location)
	}
	return sb.String()
}
