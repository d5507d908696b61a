// Package service applies highscore commands and pushes leaderboard changes
// to realtime subscribers.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/highscore-board/internal/domain"
	"github.com/highscore-board/internal/repository"
)

// DefaultBroadcastLimit is how many entries a pushed snapshot carries
const DefaultBroadcastLimit = 10

// Broadcaster receives the leaderboard after each successful mutation
type Broadcaster interface {
	BroadcastLeaderboard(snap domain.LeaderboardSnapshot)
}

// PlayerGauge tracks the size of the collection
type PlayerGauge interface {
	SetPlayers(n int)
}

// HighscoreService provides business logic for highscore operations
type HighscoreService struct {
	repo           *repository.Highscores
	broadcaster    Broadcaster
	gauge          PlayerGauge
	broadcastLimit int
	logger         *slog.Logger
}

// Option configures a HighscoreService
type Option func(*HighscoreService)

// WithBroadcaster pushes snapshots to b after every mutation
func WithBroadcaster(b Broadcaster) Option {
	return func(s *HighscoreService) {
		s.broadcaster = b
	}
}

// WithPlayerGauge reports the collection size to g after every mutation
func WithPlayerGauge(g PlayerGauge) Option {
	return func(s *HighscoreService) {
		s.gauge = g
	}
}

// WithBroadcastLimit sets how many entries a snapshot carries
func WithBroadcastLimit(n int) Option {
	return func(s *HighscoreService) {
		if n > 0 {
			s.broadcastLimit = n
		}
	}
}

// NewHighscoreService creates a new highscore service
func NewHighscoreService(repo *repository.Highscores, logger *slog.Logger, opts ...Option) *HighscoreService {
	s := &HighscoreService{
		repo:           repo,
		broadcastLimit: DefaultBroadcastLimit,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the leaderboard in the requested order
func (s *HighscoreService) List(ctx context.Context, limit int, sort domain.SortOrder) ([]domain.LeaderboardEntry, error) {
	return s.repo.ListHighscores(ctx, limit, sort)
}

// Get returns one record or ErrNotFound
func (s *HighscoreService) Get(ctx context.Context, id int) (*domain.Player, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	return p, nil
}

// SubmitHighscore records a score. Without a level it creates a new record.
// With a level it targets the player with that name and only writes when the
// score beats the stored level score; created reports whether anything was written.
func (s *HighscoreService) SubmitHighscore(ctx context.Context, cmd domain.SubmitHighscore) (player *domain.Player, created bool, err error) {
	if cmd.Level == 0 {
		p, err := s.repo.CreateHighscore(ctx, cmd.Name, cmd.Score)
		if err != nil {
			return nil, false, err
		}
		s.publish(ctx)
		return p, true, nil
	}

	if cmd.Level < 0 || cmd.Level > s.repo.Levels() {
		return nil, false, fmt.Errorf("%w: level must be between 1 and %d", domain.ErrInvalidArgument, s.repo.Levels())
	}

	current, err := s.repo.FindByName(ctx, cmd.Name)
	if err != nil {
		return nil, false, err
	}
	if current == nil {
		return nil, false, fmt.Errorf("%w: name %q", domain.ErrNotFound, cmd.Name)
	}
	if !current.HasLevels() {
		return nil, false, fmt.Errorf("%w: player %q has an overall highscore only", domain.ErrInvalidArgument, cmd.Name)
	}
	if cmd.Score <= current.LevelScore(cmd.Level) {
		s.logger.Debug("level score not improved",
			"id", current.ID,
			"level", cmd.Level,
			"score", cmd.Score,
			"current", current.LevelScore(cmd.Level),
		)
		return current, false, nil
	}

	p, err := s.repo.UpdateLevelScore(ctx, current.ID, cmd.Level, cmd.Score)
	if err != nil {
		return nil, false, err
	}
	s.publish(ctx)
	return p, true, nil
}

// NewPlayer registers a player with zeroed scores
func (s *HighscoreService) NewPlayer(ctx context.Context, cmd domain.NewPlayer) (*domain.Player, error) {
	p, err := s.repo.CreatePlayer(ctx, cmd.Name, cmd.Email)
	if err != nil {
		return nil, err
	}
	s.publish(ctx)
	return p, nil
}

// ReplaceHighscore overwrites the overall highscore of an overall-only record
func (s *HighscoreService) ReplaceHighscore(ctx context.Context, id, score int) (*domain.Player, error) {
	p, err := s.repo.UpdateHighscore(ctx, id, score)
	if err != nil {
		return nil, err
	}
	s.publish(ctx)
	return p, nil
}

// Delete removes a record
func (s *HighscoreService) Delete(ctx context.Context, id int) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.publish(ctx)
	return nil
}

// Snapshot returns the top of the leaderboard as pushed to subscribers
func (s *HighscoreService) Snapshot(ctx context.Context) (domain.LeaderboardSnapshot, error) {
	return s.repo.Snapshot(ctx, s.broadcastLimit)
}

// Ready verifies the document can be loaded and decoded
func (s *HighscoreService) Ready(ctx context.Context) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if s.gauge != nil {
		s.gauge.SetPlayers(n)
	}
	return nil
}

// publish pushes the current snapshot. Failures are logged, the mutation has
// already been saved.
func (s *HighscoreService) publish(ctx context.Context) {
	if s.broadcaster == nil && s.gauge == nil {
		return
	}
	snap, err := s.repo.Snapshot(ctx, s.broadcastLimit)
	if err != nil {
		s.logger.Warn("failed to build leaderboard snapshot", "error", err)
		return
	}
	if s.gauge != nil {
		s.gauge.SetPlayers(snap.TotalPlayers)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastLeaderboard(snap)
	}
}
