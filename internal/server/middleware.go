package server

import (
	"errors"
	"strings"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/auth"
	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	contextKeyRequestID = "request_id"
	contextKeyUserID    = "user_id"

	headerRequestID = "X-Request-ID"
)

// RequestID присваивает запросу идентификатор, если клиент его не прислал
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(contextKeyRequestID, requestID)
		c.Header(headerRequestID, requestID)
		c.Next()
	}
}

// RequestLogger пишет одну строку на запрос: 5xx Error, 4xx Warn
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(contextKeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if userID, ok := c.Get(contextKeyUserID); ok {
			fields = append(fields, zap.Int64("user_id", userID.(int64)))
		}

		switch {
		case status >= 500:
			logger.Error("HTTP request", fields...)
		case status >= 400:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}

// CORS разрешает перечисленные origin; "*" открывает API для всех
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", headerRequestID},
		ExposeHeaders:    []string{headerRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = allowedOrigins
	return cors.New(cfg)
}

// Auth требует валидный Bearer токен и кладёт user_id в контекст
func Auth(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, "Authentication credentials were not provided.")
			return
		}

		userID, err := authenticator.ValidateAccessToken(token)
		if err != nil {
			msg := "Invalid token."
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "Token has expired."
			}
			abortUnauthorized(c, msg)
			return
		}

		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(401, errorResponse{Error: &apperrors.Error{Kind: "unauthenticated", Message: msg}})
}

// currentUserID доступен только за Auth middleware
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(contextKeyUserID)
}
