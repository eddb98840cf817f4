package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studytrack-backend/internal/config"
	"studytrack-backend/internal/database"
	"studytrack-backend/internal/handlers"
	"studytrack-backend/internal/logger"
	"studytrack-backend/internal/repository"
	"studytrack-backend/internal/router"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("starting studytrack backend", "env", cfg.Env)

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg)
	if err != nil {
		appLog.Fatal("postgres connection failed", "err", err)
	}
	defer pool.Close()
	appLog.Info("postgres connected")

	// ──── Step 3: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations", appLog); err != nil {
		appLog.Fatal("database migration failed", "err", err)
	}
	appLog.Info("database migrations applied")

	// ──── Initialize Repositories ────
	postRepo := repository.NewPostRepo(pool)
	resourceRepo := repository.NewResourceRepo(pool)
	scheduleRepo := repository.NewScheduleRepo(pool)
	guideRepo := repository.NewGuideRepo(pool)
	selectionRepo := repository.NewSelectionRepo(pool)
	studyRepo := repository.NewStudyRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)

	// ──── Initialize Handlers ────
	postHandler := handlers.NewPostHandler(postRepo, appLog)
	resourceHandler := handlers.NewResourceHandler(resourceRepo, appLog)
	scheduleHandler := handlers.NewScheduleHandler(scheduleRepo, appLog)
	guideHandler := handlers.NewGuideHandler(guideRepo, appLog)
	selectionHandler := handlers.NewSelectionHandler(selectionRepo, appLog)
	studyHandler := handlers.NewStudyHandler(studyRepo, resourceRepo, scheduleRepo, guideRepo, sessionRepo, appLog)
	sessionHandler := handlers.NewSessionHandler(sessionRepo, studyRepo, guideRepo, selectionRepo, appLog)
	sessionStepHandler := handlers.NewSessionStepHandler(sessionRepo, appLog)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(
		appLog,
		postHandler,
		resourceHandler,
		scheduleHandler,
		guideHandler,
		selectionHandler,
		studyHandler,
		sessionHandler,
		sessionStepHandler,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		appLog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	appLog.Info("studytrack backend ready", "addr", fmt.Sprintf("http://localhost:%s/api", cfg.Port))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		appLog.Fatal("server error", "err", err)
	}
}
