package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/app"
	"github.com/Freeeeeet/skill_swap/internal/auth"
	"github.com/Freeeeeet/skill_swap/internal/cache"
	"github.com/Freeeeeet/skill_swap/internal/config"
	"github.com/Freeeeeet/skill_swap/internal/controller"
	"github.com/Freeeeeet/skill_swap/internal/monitoring"
	"github.com/Freeeeeet/skill_swap/internal/repository"
	"github.com/Freeeeeet/skill_swap/internal/repository/base"
	"github.com/Freeeeeet/skill_swap/internal/server"
	"github.com/Freeeeeet/skill_swap/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("Service stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting skill swap",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("telegram", cfg.TelegramToken != ""),
		zap.Bool("redis", cfg.Redis.Addr != ""),
	)

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	migrator, err := app.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	migrator.Close()

	monitoring.Init()

	users := repository.NewUserRepository(pool)
	profiles := repository.NewProfileRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)
	requestRepo := repository.NewSwapRequestRepository(pool)
	sessionRepo := repository.NewSwapSessionRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	matchRepo := repository.NewMatchRepository(pool)
	transactor := base.NewTransactor(pool)

	// Интерфейс должен остаться nil, если Redis не настроен
	var catalogCache service.CatalogCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("Redis unavailable, catalog reads go to the database", zap.Error(err))
		}
		catalogCache = redisCache
	}

	notifications := service.NewNotificationService(notificationRepo, users, logger)
	services := server.Services{
		Users:         service.NewUserService(users, profiles, reviewRepo, logger),
		Catalog:       service.NewCatalogService(catalogRepo, catalogCache, logger),
		Requests:      service.NewRequestService(requestRepo, sessionRepo, catalogRepo, users, transactor, notifications, logger),
		Sessions:      service.NewSessionService(sessionRepo, catalogRepo, notifications, logger),
		Reviews:       service.NewReviewService(reviewRepo, sessionRepo, notifications, logger),
		Notifications: notifications,
		Matches:       service.NewMatchService(matchRepo, logger),
	}

	authenticator := auth.NewAuthenticator(cfg.JWT.Secret, cfg.JWT.Issuer)

	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return err
		}

		notifications.SetDeliverer(controller.NewTelegramDeliverer(b))
		botController := controller.NewBotController(b, services.Users, services.Requests, services.Sessions, authenticator, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot commands not set", zap.Error(err))
		}
		go botController.Start(ctx)
	}

	scheduler := app.NewScheduler(services.Requests, cfg.ExpirySweepInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	srv := server.New(services, authenticator, logger, server.Options{
		Addr:           cfg.HTTPAddr,
		Production:     cfg.IsProduction(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		BotUsername:    cfg.BotUsername,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
