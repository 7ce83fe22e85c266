package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"dev.cogito.requiem/internal/config"
	"dev.cogito.requiem/internal/database"
	"dev.cogito.requiem/internal/debate"
	"dev.cogito.requiem/internal/debate/agents"
	"dev.cogito.requiem/internal/debate/orchestrator"
	"dev.cogito.requiem/internal/handlers"
	"dev.cogito.requiem/internal/llm"
	"dev.cogito.requiem/internal/retrieval"
	"dev.cogito.requiem/internal/router"
	"dev.cogito.requiem/internal/vectordb/chroma"
)

func main() {
	// Environment variables may be set directly; a missing .env is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Debug("Could not load .env file")
	}

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	if err := run(logger); err != nil {
		logger.WithError(err).Fatal("Server exited with error")
	}
}

func run(logger *logrus.Logger) error {
	cfg := config.Load()

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.CreateSchema(context.Background()); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	store := database.NewStore(db, logger)

	chromaClient, err := chroma.NewClient(&chroma.Config{
		Host:      cfg.Chroma.Host,
		Port:      cfg.Chroma.Port,
		UseTLS:    cfg.Chroma.UseTLS,
		AuthToken: cfg.Chroma.AuthToken,
		Timeout:   cfg.Chroma.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create vector store client: %w", err)
	}

	retriever := retrieval.NewRetriever(chromaClient, retrieval.Config{
		Collection: cfg.Chroma.Collection,
		TopK:       cfg.Chroma.TopK,
	}, logger)

	roles, err := config.NewRolesLoader(cfg.Debate.RolesPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load role configuration: %w", err)
	}

	provider := llm.NewGeminiProviderWithRetry(
		cfg.LLM.GeminiAPIKey, llm.GeminiAPIURL, cfg.LLM.Model,
		llm.RetryConfig{
			MaxRetries:   cfg.LLM.MaxRetries,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	)

	executor := agents.NewExecutor(provider, retriever, roles, logger)
	registry := debate.NewRegistry()

	orch := orchestrator.New(store, executor, registry, roles, orchestrator.Config{
		Rounds: cfg.Debate.Rounds,
	}, logger)

	debateHandler := handlers.NewDebateHandler(orch, registry, cfg.Debate.MaxConcurrent, cfg.Debate.Timeout, logger)
	adminHandler := handlers.NewAdminHandler(store, logger)

	engine := router.SetupRouter(debateHandler, adminHandler, router.Options{
		Mode:           cfg.Server.Mode,
		MetricsEnabled: cfg.Debate.MetricsEnabled,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
		}).Info("Starting debate server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	logger.Info("Shutting down server...")

	// Fire cancel functions so in-flight debates stop at the next round.
	registry.Clear()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}
