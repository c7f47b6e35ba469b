package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/auth"
	"github.com/Freeeeeet/skill_swap/internal/monitoring"
	"github.com/Freeeeeet/skill_swap/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services are the use cases exposed over HTTP
type Services struct {
	Users         *service.UserService
	Catalog       *service.CatalogService
	Requests      *service.RequestService
	Sessions      *service.SessionService
	Reviews       *service.ReviewService
	Notifications *service.NotificationService
	Matches       *service.MatchService
}

// Options configure the HTTP server
type Options struct {
	Addr           string
	Production     bool
	AllowedOrigins []string
	// BotUsername включает deep link в ответе на запрос токена привязки
	BotUsername string
}

// Server is the REST API of the skill swap
type Server struct {
	services Services
	auth     *auth.Authenticator
	logger   *zap.Logger
	opts     Options
	router   *gin.Engine
	http     *http.Server
}

func New(services Services, authenticator *auth.Authenticator, logger *zap.Logger, opts Options) *Server {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	if len(opts.AllowedOrigins) > 0 {
		router.Use(CORS(opts.AllowedOrigins))
	}
	router.Use(monitoring.MetricsMiddleware())
	router.Use(RequestLogger(logger))

	s := &Server{
		services: services,
		auth:     authenticator,
		logger:   logger,
		opts:     opts,
		router:   router,
	}
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the gin router
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", monitoring.GinHandler())

	v1 := s.router.Group("/api/v1")
	v1.Use(Auth(s.auth))

	requests := v1.Group("/requests")
	{
		requests.POST("", s.handleCreateRequest)
		requests.GET("/sent", s.handleListSentRequests)
		requests.GET("/received", s.handleListReceivedRequests)
		requests.GET("/:id", s.handleGetRequest)
		requests.POST("/:id/respond", s.handleRespondRequest)
		requests.POST("/:id/cancel", s.handleCancelRequest)
	}

	sessions := v1.Group("/sessions")
	{
		sessions.GET("", s.handleListSessions)
		sessions.GET("/:id", s.handleGetSession)
		sessions.POST("/:id/start", s.handleStartSession)
		sessions.POST("/:id/end", s.handleEndSession)
		sessions.POST("/:id/cancel", s.handleCancelSession)
		sessions.POST("/:id/no-show", s.handleNoShowSession)
		sessions.PUT("/:id/schedule", s.handleRescheduleSession)
		sessions.PUT("/:id/notes", s.handleUpdateNotes)
		sessions.POST("/:id/reviews", s.handleCreateReview)
	}

	reviews := v1.Group("/reviews")
	{
		reviews.GET("/given", s.handleListGivenReviews)
		reviews.GET("/received", s.handleListReceivedReviews)
		reviews.PUT("/:id", s.handleUpdateReview)
	}

	catalog := v1.Group("/catalog")
	{
		catalog.GET("/categories", s.handleListCategories)
		catalog.GET("/categories/:id/skills", s.handleListSkills)
		catalog.GET("/skills/search", s.handleSearchSkills)
		catalog.GET("/skills/:id", s.handleGetSkill)
	}

	me := v1.Group("/me")
	{
		me.GET("", s.handleGetMe)
		me.GET("/profile", s.handleGetMyProfile)
		me.PUT("/profile", s.handleUpdateProfile)
		me.POST("/telegram/link-token", s.handleTelegramLinkToken)

		me.GET("/offered-skills", s.handleListOffered)
		me.POST("/offered-skills", s.handleOfferSkill)
		me.POST("/offered-skills/:id/toggle", s.handleToggleOffered)
		me.DELETE("/offered-skills/:id", s.handleDeleteOffered)

		me.GET("/desired-skills", s.handleListDesired)
		me.POST("/desired-skills", s.handleDesireSkill)
		me.POST("/desired-skills/:id/toggle", s.handleToggleDesired)
		me.DELETE("/desired-skills/:id", s.handleDeleteDesired)
	}
	v1.GET("/users/search", s.handleSearchUsers)
	v1.GET("/users/:id/profile", s.handleGetUserProfile)
	v1.GET("/departments", s.handleListDepartments)
	v1.GET("/departments/:id/branches", s.handleListBranches)

	notifications := v1.Group("/notifications")
	{
		notifications.GET("", s.handleListNotifications)
		notifications.GET("/unread-count", s.handleUnreadCount)
		notifications.POST("/read-all", s.handleMarkAllRead)
		notifications.POST("/:id/read", s.handleMarkRead)
	}

	matches := v1.Group("/matches")
	{
		matches.GET("", s.handleListMatches)
		matches.POST("/:id/dismiss", s.handleDismissMatch)
	}
}

// Run слушает адрес до Shutdown
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.opts.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown дожидается активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
