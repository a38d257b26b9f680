package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/awalczak/memodeck/internal/ai"
	"github.com/awalczak/memodeck/internal/api"
	"github.com/awalczak/memodeck/internal/config"
	"github.com/awalczak/memodeck/internal/db"
	"github.com/awalczak/memodeck/internal/logger"
	"github.com/awalczak/memodeck/internal/ratelimit"
	"github.com/awalczak/memodeck/internal/repository/sqlite"
	"github.com/awalczak/memodeck/internal/services"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("memodeck server starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("gemini_model=%s", cfg.GeminiModel)
	log.Debug("ai_rate_limit=%d per %ds", cfg.AIRateLimit, cfg.AIRateWindowSeconds)
	log.Debug("token_ttl_hours=%d", cfg.TokenTTLHours)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	userRepo := sqlite.NewUserRepository(database.DB)
	deckRepo := sqlite.NewDeckRepository(database.DB)
	cardRepo := sqlite.NewFlashcardRepository(database.DB)
	sessionRepo := sqlite.NewSessionRepository(database.DB)
	genLogRepo := sqlite.NewGenerationLogRepository(database.DB)

	var generator ai.Generator = ai.Unconfigured{}
	if gemini, err := ai.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		// Generation is optional; the rest of the API works without it.
		log.Warn("AI generation disabled: %v", err)
	} else {
		generator = gemini
	}

	limiter := ratelimit.New(cfg.AIRateLimit, time.Duration(cfg.AIRateWindowSeconds)*time.Second, nil)

	srv := api.NewServer(
		database,
		services.NewAuthService(userRepo, time.Duration(cfg.TokenTTLHours)*time.Hour, nil),
		services.NewDeckService(deckRepo, cardRepo, nil),
		services.NewCardService(cardRepo, deckRepo, nil),
		services.NewStudyService(sessionRepo, cardRepo, deckRepo, nil),
		services.NewGenerationService(generator, genLogRepo, limiter, nil),
	)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("memodeck server stopped")
	log.Info("===========================================")
}
