package controller

import (
	"context"

	"github.com/Freeeeeet/skill_swap/internal/auth"
	"github.com/Freeeeeet/skill_swap/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// BotController обслуживает Telegram: привязку аккаунта и ответы на заявки кнопками
type BotController struct {
	bot      *bot.Bot
	users    *service.UserService
	requests *service.RequestService
	sessions *service.SessionService
	auth     *auth.Authenticator
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	users *service.UserService,
	requests *service.RequestService,
	sessions *service.SessionService,
	authenticator *auth.Authenticator,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:      botInstance,
		users:    users,
		requests: requests,
		sessions: sessions,
		auth:     authenticator,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// /start и /start <token>
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start ", bot.MatchTypePrefix, c.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/requests", bot.MatchTypeExact, c.HandleRequests)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/sessions", bot.MatchTypeExact, c.HandleSessions)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "requests", Description: "📨 Заявки на обмен навыками"},
		{Command: "sessions", Description: "🗓 Мои ближайшие сессии"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает long polling до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
