package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/highscore-board/internal/backend"
	"github.com/highscore-board/internal/config"
	"github.com/highscore-board/internal/domain"
	"github.com/highscore-board/internal/logging"
	"github.com/highscore-board/internal/repository"
	"github.com/highscore-board/internal/store"
)

var samplePlayers = []domain.Player{
	{ID: 1, Name: "John", Highscore: 100},
	{ID: 2, Name: "Alice", Email: "alice@example.com", Highscore: 90},
	{ID: 3, Name: "dummy", Email: "dummy@example.com", Highscore: 75, LevelHighscores: []int{50, 20, 5, 0}},
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	force := flag.Bool("force", false, "Overwrite an existing document")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(cfg.Log)

	if err := run(cfg, *force, logger); err != nil {
		logger.Error("seeding failed", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
}

// run seeds the configured store. Returning instead of exiting lets the
// deferred close run on every path.
func run(cfg *config.Config, force bool, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	off := false
	cfg.Storage.CreateIfMissing = &off
	docs, err := backend.Open(ctx, &cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Storage.Backend, err)
	}
	defer docs.Close()

	existing, err := docs.Load(ctx)
	switch {
	case err == nil && !force:
		players, derr := repository.Decode(existing)
		if derr == nil && len(players) > 0 {
			return fmt.Errorf("document already holds %d players, use -force to overwrite", len(players))
		}
	case err != nil && !errors.Is(err, store.ErrNotExist):
		return fmt.Errorf("reading existing document: %w", err)
	}

	doc, err := repository.Encode(samplePlayers)
	if err != nil {
		return fmt.Errorf("encoding sample players: %w", err)
	}
	if err := docs.Save(ctx, doc); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	logger.Info("seeded highscore document", "backend", cfg.Storage.Backend, "players", len(samplePlayers))
	return nil
}
