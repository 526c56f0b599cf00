package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planner/internal/auth"
	"planner/internal/backend"
	"planner/internal/config"
	"planner/internal/handler"
	"planner/internal/middleware"
	"planner/internal/objectstore"
	"planner/internal/realtime"
	"planner/internal/repository"
	"planner/internal/session"
	"planner/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine   *gin.Engine
	DB       *gorm.DB
	Config   *config.Config
	Sessions *session.Manager
	Logger   *slog.Logger
}

func Init(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := repository.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	logger.Info("✅ Connected to database", "driver", cfg.DBDriver)

	bucket, err := objectstore.NewBucket(cfg.StorageDir, cfg.JWTSecret, cfg.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to open object storage: %w", err)
	}

	hub := realtime.NewHub(0)
	remote := backend.New(db, bucket, hub, cfg.SignedURLTTL, logger)
	sessions := session.NewManager(
		func(userID uuid.UUID) syncer.Remote { return remote.ForUser(userID) },
		session.Options{
			ReminderInterval: cfg.ReminderInterval,
			MaxUploadBytes:   cfg.MaxUploadBytes,
		},
		logger,
	)
	authService := auth.NewService(
		repository.NewUserRepository(db),
		auth.NewTokens(cfg.JWTSecret, cfg.JWTExpiry),
		auth.LogResetSender{Logger: logger},
	)

	// Setup Gin
	r := gin.Default()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, sessions, logger)
	taskHandler := handler.NewTaskHandler(sessions, logger)
	categoryHandler := handler.NewCategoryHandler(sessions, logger)
	attachmentHandler := handler.NewAttachmentHandler(sessions, cfg.MaxUploadBytes, logger)
	reminderHandler := handler.NewReminderHandler(sessions, logger)
	notificationHandler := handler.NewNotificationHandler(sessions, logger)
	viewHandler := handler.NewViewHandler(sessions, logger)
	storageHandler := handler.NewStorageHandler(bucket)

	// Public routes
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": sessions.Active()})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/auth/signup", authHandler.SignUp)
	r.POST("/auth/signin", authHandler.SignIn)
	r.POST("/auth/password-reset", authHandler.RequestPasswordReset)
	r.POST("/auth/password-reset/confirm", authHandler.ConfirmPasswordReset)
	r.GET("/storage/object", storageHandler.Download)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.POST("/auth/signout", authHandler.SignOut)
		authorized.GET("/session", authHandler.Session)

		// Task routes
		authorized.GET("/tasks", taskHandler.List)
		authorized.POST("/tasks", taskHandler.Create)
		authorized.POST("/tasks/reorder", taskHandler.Reorder)
		authorized.PATCH("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/toggle", taskHandler.Toggle)
		authorized.PUT("/tasks/:id/status", taskHandler.SetStatus)
		authorized.POST("/tasks/:id/move", taskHandler.Move)

		// Category routes
		authorized.GET("/categories", categoryHandler.List)
		authorized.POST("/categories", categoryHandler.Create)
		authorized.DELETE("/categories/:id", categoryHandler.Delete)

		// Attachment routes
		authorized.GET("/tasks/:id/attachments", attachmentHandler.List)
		authorized.POST("/tasks/:id/attachments", attachmentHandler.Upload)
		authorized.DELETE("/attachments/:id", attachmentHandler.Delete)

		// Reminder routes
		authorized.GET("/reminders", reminderHandler.List)
		authorized.POST("/tasks/:id/reminders", reminderHandler.Create)
		authorized.DELETE("/reminders/:id", reminderHandler.Delete)

		// Notification routes
		authorized.GET("/notifications", notificationHandler.List)
		authorized.GET("/notifications/stream", notificationHandler.Stream)
		authorized.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		authorized.POST("/notifications/:id/read", notificationHandler.MarkRead)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)
		authorized.DELETE("/notifications", notificationHandler.Clear)

		// View routes
		authorized.GET("/views/list", viewHandler.List)
		authorized.GET("/views/board", viewHandler.Board)
		authorized.GET("/views/calendar", viewHandler.Calendar)
		authorized.GET("/views/planner", viewHandler.Planner)
	}

	return &Server{
		Engine:   r,
		DB:       db,
		Config:   cfg,
		Sessions: sessions,
		Logger:   logger,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Logger.Info("🚀 Server running", "port", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("❌ Failed to listen", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Logger.Error("❌ Server forced to shutdown", "error", err)
	}
	s.Sessions.Shutdown()

	if sqlDB, err := s.DB.DB(); err == nil {
		sqlDB.Close()
	}
	s.Logger.Info("✅ Server exited properly")
}
