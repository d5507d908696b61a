// Package worker runs background maintenance for the highscore document.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/highscore-board/internal/repository"
	"github.com/highscore-board/internal/store"
)

// RunRecorder counts backup runs by outcome
type RunRecorder interface {
	BackupRun(err error)
}

// BackupWorker periodically copies the primary document into a backup store
type BackupWorker struct {
	source   store.DocumentStore
	target   store.DocumentStore
	interval time.Duration
	recorder RunRecorder
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewBackupWorker creates a new backup worker. recorder may be nil.
func NewBackupWorker(source, target store.DocumentStore, interval time.Duration, recorder RunRecorder, logger *slog.Logger) *BackupWorker {
	return &BackupWorker{
		source:   source,
		target:   target,
		interval: interval,
		recorder: recorder,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background backup loop
func (w *BackupWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("backup worker started", "interval", w.interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background loop and waits for an in-flight run
func (w *BackupWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.logger.Info("backup worker stopped")
	return nil
}

func (w *BackupWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error("backup failed", "error", err)
			}
		}
	}
}

// RunOnce copies the current document if it decodes. A corrupt primary is
// never allowed to overwrite the last good backup.
func (w *BackupWorker) RunOnce(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		if w.recorder != nil {
			w.recorder.BackupRun(err)
		}
	}()

	doc, err := w.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("reading primary document: %w", err)
	}
	players, err := repository.Decode(doc)
	if err != nil {
		return fmt.Errorf("checking primary document: %w", err)
	}
	if err := w.target.Save(ctx, doc); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}

	w.logger.Info("backup completed",
		"players", len(players),
		"bytes", len(doc),
		"duration", time.Since(start),
	)
	return nil
}
