package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	DBDSN       string
	HTTPAddr    string

	JWT struct {
		Secret string
		Issuer string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
		TTL      time.Duration
	}

	TelegramToken string
	// BotUsername нужен для deep link привязки аккаунта
	BotUsername string

	// ExpirySweepInterval 0 отключает фоновую пометку просроченных заявок
	ExpirySweepInterval time.Duration

	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv читает конфигурацию из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment:   getEnvDefault("ENV", "development"),
		DBDSN:         strings.TrimSpace(os.Getenv("DB_DSN")),
		HTTPAddr:      getEnvDefault("HTTP_ADDR", ":8080"),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
	}

	cfg.BotUsername = strings.TrimPrefix(getEnvDefault("TELEGRAM_BOT_USERNAME", ""), "@")

	cfg.JWT.Secret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	cfg.JWT.Issuer = getEnvDefault("JWT_ISSUER", "skill_swap")

	// Redis не обязателен: без адреса кэш каталога отключён
	cfg.Redis.Addr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")

	var err error
	if cfg.Redis.DB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Redis.TTL, err = getEnvDuration("CATALOG_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ExpirySweepInterval, err = getEnvDuration("EXPIRY_SWEEP_INTERVAL", 0); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", k, err)
	}
	return n, nil
}

func getEnvDuration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", k, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", k)
	}
	return d, nil
}
