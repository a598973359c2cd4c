package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/venuepulse/sentiment-engine/internal/api"
	"github.com/venuepulse/sentiment-engine/internal/config"
	"github.com/venuepulse/sentiment-engine/internal/notifications"
	"github.com/venuepulse/sentiment-engine/internal/pipeline"
	"github.com/venuepulse/sentiment-engine/internal/quality"
	"github.com/venuepulse/sentiment-engine/internal/scheduler"
	"github.com/venuepulse/sentiment-engine/internal/sentiment"
	"github.com/venuepulse/sentiment-engine/internal/sources"
	"github.com/venuepulse/sentiment-engine/internal/storage"
	"github.com/venuepulse/sentiment-engine/internal/store"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Venue Sentiment Engine")

	mentions, err := newMentionStore(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize mention store: %v", err)
	}
	defer mentions.Close()

	archive, err := newArchive(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize archive: %v", err)
	}

	notificationService := notifications.NewService(cfg)
	history := quality.NewHistory()

	p := pipeline.New(cfg, mentions, modelAdapters(cfg)...)
	orchestrator := pipeline.NewOrchestrator(cfg, p, contentSources(cfg),
		history, archive, notificationService)

	schedulerService := scheduler.NewService(cfg, orchestrator)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	server := api.NewServer(cfg, mentions, history, orchestrator).HTTPServer()

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Let in-flight jobs finish before the store closes.
	orchestrator.Wait()

	logrus.Info("Engine exited")
}

func newMentionStore(cfg *config.Config) (store.MentionStore, error) {
	if cfg.DatabasePath == "" {
		logrus.Warn("No database path configured, mentions will not survive restarts")
		return store.NewMemoryStore(), nil
	}
	return store.NewSQLiteStore(cfg.DatabasePath)
}

func newArchive(cfg *config.Config) (storage.Archive, error) {
	if cfg.StorageAccount != "" {
		return storage.NewBlobArchive(cfg.StorageAccount, cfg.StorageContainer)
	}
	if cfg.DataDir != "" {
		return storage.NewLocalArchive(cfg.DataDir)
	}
	logrus.Warn("No archive configured, run reports will not be persisted")
	return nil, nil
}

func modelAdapters(cfg *config.Config) []sentiment.ModelAdapter {
	adapters := []sentiment.ModelAdapter{
		sentiment.NewLexiconAdapter(),
		sentiment.NewIntensityAdapter(),
	}
	remote := sentiment.NewRemoteAdapter(cfg.RemoteModelURL, cfg.RemoteModelRPS)
	if remote.IsEnabled() {
		adapters = append(adapters, remote)
	} else {
		logrus.Info("Remote model adapter disabled, scoring with local models only")
	}
	return adapters
}

func contentSources(cfg *config.Config) []sources.Source {
	return []sources.Source{
		sources.NewReviewFeedSource(cfg.FeedURL, cfg.EntityNames),
	}
}
