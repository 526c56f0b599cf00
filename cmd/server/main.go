package main

import (
	"log"
	"log/slog"
	"os"

	_ "planner/docs"
	"planner/internal/config"
	"planner/internal/server"
)

// @title           Planner API
// @version         1.0
// @description     Personal task planner: tasks, categories, attachments, reminders and notifications.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := config.Load()

	s, err := server.Init(cfg, logger)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
