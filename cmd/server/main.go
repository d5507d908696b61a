package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/highscore-board/internal/backend"
	"github.com/highscore-board/internal/config"
	"github.com/highscore-board/internal/handler"
	"github.com/highscore-board/internal/kafka"
	"github.com/highscore-board/internal/logging"
	"github.com/highscore-board/internal/metrics"
	"github.com/highscore-board/internal/repository"
	"github.com/highscore-board/internal/service"
	"github.com/highscore-board/internal/store"
	"github.com/highscore-board/internal/websocket"
	"github.com/highscore-board/internal/worker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	dev := flag.Bool("dev", false, "Use the in-memory document store")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *dev {
		cfg.Storage.Backend = config.BackendMemory
	}

	// Setup structured logging
	logger := logging.New(cfg.Log)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the document store
	openCtx, openCancel := context.WithTimeout(ctx, 30*time.Second)
	docs, err := backend.Open(openCtx, &cfg.Storage, logger)
	openCancel()
	if err != nil {
		logger.Error("failed to open document store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer docs.Close()

	m := metrics.New()

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	// Initialize services
	repo := repository.New(docs, logger,
		repository.WithLevels(cfg.Leaderboard.Levels),
		repository.WithObserver(m),
	)
	highscores := service.NewHighscoreService(repo, logger,
		service.WithBroadcaster(wsHub),
		service.WithPlayerGauge(m),
		service.WithBroadcastLimit(cfg.WebSocket.BroadcastLimit),
	)
	if err := highscores.Ready(ctx); err != nil {
		logger.Warn("highscore document is not readable yet", "error", err)
	}

	// Start backup worker
	var backupWorker *worker.BackupWorker
	if cfg.Backup.Enabled {
		backupWorker = worker.NewBackupWorker(docs, store.NewFileStore(cfg.Backup.Path), cfg.Backup.Interval, m, logger)
		if err := backupWorker.Start(ctx); err != nil {
			logger.Error("failed to start backup worker", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Kafka consumer for score ingestion
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		kafkaConsumer = kafka.NewConsumer(&cfg.Kafka, highscores, m, logger)
		startCtx, startCancel := context.WithTimeout(ctx, 30*time.Second)
		if err := kafkaConsumer.Start(startCtx); err != nil {
			logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
			kafkaConsumer = nil
		}
		startCancel()
	}

	httpHandler := handler.NewHandler(highscores, wsHub, m, cfg, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port, "backend", docs.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	wsHub.Stop()

	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	if backupWorker != nil {
		if err := backupWorker.Stop(); err != nil {
			logger.Error("failed to stop backup worker", "error", err)
		}
	}

	logger.Info("server stopped")
}
