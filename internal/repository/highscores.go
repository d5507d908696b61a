// Package repository owns the query and mutation semantics over the highscore
// collection. Every call reads the full document from the store; mutations
// write the full document back. There is no lock around read-modify-write, so
// concurrent mutations can lose updates.
package repository

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/highscore-board/internal/domain"
	"github.com/highscore-board/internal/store"
	"github.com/highscore-board/internal/validator"
)

// MaxLimit caps the number of entries a list call returns.
const MaxLimit = 100

// DefaultLevels is the number of level slots a new player starts with.
const DefaultLevels = 4

// Observer receives the outcome of each repository operation.
type Observer interface {
	ObserveOperation(op string, err error, seconds float64)
}

// Highscores provides the highscore repository operations
type Highscores struct {
	store    store.DocumentStore
	levels   int
	logger   *slog.Logger
	observer Observer
}

// Option configures a Highscores repository
type Option func(*Highscores)

// WithLevels sets how many level slots new players get
func WithLevels(n int) Option {
	return func(h *Highscores) {
		if n > 0 {
			h.levels = n
		}
	}
}

// WithObserver attaches an operation observer, typically metrics
func WithObserver(o Observer) Option {
	return func(h *Highscores) {
		h.observer = o
	}
}

// New creates a repository over the given document store
func New(s store.DocumentStore, logger *slog.Logger, opts ...Option) *Highscores {
	h := &Highscores{
		store:  s,
		levels: DefaultLevels,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Levels returns the configured number of level slots
func (h *Highscores) Levels() int {
	return h.levels
}

// NormalizeLimit maps out-of-range limits to MaxLimit
func NormalizeLimit(limit int) int {
	if limit <= 0 || limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ListHighscores returns at most limit entries in the requested order.
// Ties keep their order in the underlying collection.
func (h *Highscores) ListHighscores(ctx context.Context, limit int, sort domain.SortOrder) (entries []domain.LeaderboardEntry, err error) {
	defer h.observe("list", &err)()

	players, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(players, limit, sort), nil
}

// Rank projects, orders and truncates a collection into leaderboard entries
func Rank(players []domain.Player, limit int, sort domain.SortOrder) []domain.LeaderboardEntry {
	limit = NormalizeLimit(limit)
	sort = domain.ParseSortOrder(string(sort))

	ordered := slices.Clone(players)
	switch sort {
	case domain.SortOrderAsc:
		slices.SortStableFunc(ordered, func(a, b domain.Player) int {
			return cmp.Compare(a.Highscore, b.Highscore)
		})
	case domain.SortOrderDesc:
		slices.SortStableFunc(ordered, func(a, b domain.Player) int {
			return cmp.Compare(b.Highscore, a.Highscore)
		})
	}

	if limit > len(ordered) {
		limit = len(ordered)
	}
	entries := make([]domain.LeaderboardEntry, limit)
	for i, p := range ordered[:limit] {
		entries[i] = domain.LeaderboardEntry{
			ID:        p.ID,
			Player:    p.Name,
			Highscore: p.Highscore,
		}
	}
	return entries
}

// GetByID returns the player with the given id, or nil if there is none
func (h *Highscores) GetByID(ctx context.Context, id int) (player *domain.Player, err error) {
	defer h.observe("get", &err)()

	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be a positive integer", domain.ErrInvalidArgument)
	}
	players, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexByID(players, id); i >= 0 {
		return players[i].Clone(), nil
	}
	return nil, nil
}

// FindByName returns the first player with the given name, or nil if there is none
func (h *Highscores) FindByName(ctx context.Context, name string) (player *domain.Player, err error) {
	defer h.observe("find", &err)()

	players, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range players {
		if players[i].Name == name {
			return players[i].Clone(), nil
		}
	}
	return nil, nil
}

// Count returns the number of records in the collection
func (h *Highscores) Count(ctx context.Context) (n int, err error) {
	defer h.observe("count", &err)()

	players, err := h.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(players), nil
}

// CreateHighscore appends a record with an overall highscore. Duplicate names are allowed.
func (h *Highscores) CreateHighscore(ctx context.Context, name string, highscore int) (player *domain.Player, err error) {
	defer h.observe("create_highscore", &err)()

	if !validator.ValidName(name) {
		return nil, fmt.Errorf("%w: name must be %d-%d characters", domain.ErrValidation, validator.MinNameLength, validator.MaxNameLength)
	}
	if highscore < 0 {
		return nil, fmt.Errorf("%w: highscore must not be negative", domain.ErrInvalidArgument)
	}

	players, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	p := domain.Player{
		ID:        nextID(players),
		Name:      name,
		Highscore: highscore,
	}
	players = append(players, p)
	if err := h.write(ctx, players); err != nil {
		return nil, err
	}

	h.logger.Info("highscore created", "id", p.ID, "name", p.Name, "highscore", p.Highscore)
	return p.Clone(), nil
}

// CreatePlayer registers a player with zeroed scores. Name and email must be unused.
func (h *Highscores) CreatePlayer(ctx context.Context, name, email string) (player *domain.Player, err error) {
	defer h.observe("create_player", &err)()

	if !validator.ValidName(name) {
		return nil, fmt.Errorf("%w: name must be %d-%d characters", domain.ErrValidation, validator.MinNameLength, validator.MaxNameLength)
	}

	players, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		if p.Name == name {
			return nil, fmt.Errorf("%w: name %q is taken", domain.ErrConflict, name)
		}
		if email != "" && strings.EqualFold(p.Email, email) {
			return nil, fmt.Errorf("%w: email %q is taken", domain.ErrConflict, email)
		}
	}

	p := domain.Player{
		ID:              nextID(players),
		Name:            name,
		Email:           email,
		LevelHighscores: make([]int, h.levels),
	}
	players = append(players, p)
	if err := h.write(ctx, players); err != nil {
		return nil, err
	}

	h.logger.Info("player created", "id", p.ID, "name", p.Name)
	return p.Clone(), nil
}

// UpdateLevelScore overwrites one level score and recomputes the overall highscore.
// It does not check that the new score is higher; callers decide that. Records
// created with an overall highscore only are rejected.
func (h *Highscores) UpdateLevelScore(ctx context.Context, id, level, score int) (player *domain.Player, err error) {
	defer h.observe("update_level", &err)()

	switch {
	case id <= 0:
		return nil, fmt.Errorf("%w: id must be a positive integer", domain.ErrInvalidArgument)
	case level < 1 || level > h.levels:
		return nil, fmt.Errorf("%w: level must be between 1 and %d", domain.ErrInvalidArgument, h.levels)
	case score < 0:
		return nil, fmt.Errorf("%w: score must not be negative", domain.ErrInvalidArgument)
	}

	players, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexByID(players, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}

	p := &players[i]
	if !p.HasLevels() {
		return nil, fmt.Errorf("%w: player %d has an overall highscore only", domain.ErrInvalidArgument, id)
	}
	if len(p.LevelHighscores) < h.levels {
		grown := make([]int, h.levels)
		copy(grown, p.LevelHighscores)
		p.LevelHighscores = grown
	}
	p.LevelHighscores[level-1] = score
	p.RecomputeHighscore()

	if err := h.write(ctx, players); err != nil {
		return nil, err
	}

	h.logger.Info("level score updated", "id", p.ID, "level", level, "score", score, "highscore", p.Highscore)
	return p.Clone(), nil
}

// UpdateHighscore replaces the overall highscore of a record that has no level scores
func (h *Highscores) UpdateHighscore(ctx context.Context, id, highscore int) (player *domain.Player, err error) {
	defer h.observe("update_highscore", &err)()

	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be a positive integer", domain.ErrInvalidArgument)
	}
	if highscore < 0 {
		return nil, fmt.Errorf("%w: highscore must not be negative", domain.ErrInvalidArgument)
	}

	players, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexByID(players, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	p := &players[i]
	if p.HasLevels() {
		return nil, fmt.Errorf("%w: player %d tracks level scores", domain.ErrInvalidArgument, id)
	}
	p.Highscore = highscore

	if err := h.write(ctx, players); err != nil {
		return nil, err
	}

	h.logger.Info("highscore replaced", "id", p.ID, "highscore", p.Highscore)
	return p.Clone(), nil
}

// DeleteByID removes the record entirely
func (h *Highscores) DeleteByID(ctx context.Context, id int) (err error) {
	defer h.observe("delete", &err)()

	if id <= 0 {
		return fmt.Errorf("%w: id must be a positive integer", domain.ErrInvalidArgument)
	}
	players, err := h.load(ctx)
	if err != nil {
		return err
	}
	i := indexByID(players, id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	players = slices.Delete(players, i, i+1)

	if err := h.write(ctx, players); err != nil {
		return err
	}

	h.logger.Info("player deleted", "id", id)
	return nil
}

// Snapshot returns the top of the leaderboard together with the collection size
func (h *Highscores) Snapshot(ctx context.Context, limit int) (snap domain.LeaderboardSnapshot, err error) {
	defer h.observe("snapshot", &err)()

	players, err := h.load(ctx)
	if err != nil {
		return domain.LeaderboardSnapshot{}, err
	}
	return domain.LeaderboardSnapshot{
		Entries:      Rank(players, limit, domain.SortOrderDesc),
		TotalPlayers: len(players),
	}, nil
}

// load reads and decodes the full document with the caller's context
func (h *Highscores) load(ctx context.Context) ([]domain.Player, error) {
	doc, err := h.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading highscores: %w", err)
	}
	return Decode(doc)
}

func (h *Highscores) write(ctx context.Context, players []domain.Player) error {
	doc, err := Encode(players)
	if err != nil {
		return err
	}
	if err := h.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("saving highscores: %w", err)
	}
	return nil
}

func (h *Highscores) observe(op string, errp *error) func() {
	if h.observer == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		h.observer.ObserveOperation(op, *errp, time.Since(start).Seconds())
	}
}

func indexByID(players []domain.Player, id int) int {
	for i := range players {
		if players[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID returns one past the largest id in use. For a collection whose ids
// run 1..n this is n+1.
func nextID(players []domain.Player) int {
	maxID := 0
	for _, p := range players {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}
