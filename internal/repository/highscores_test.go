package repository_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/highscore-board/internal/domain"
	"github.com/highscore-board/internal/repository"
	"github.com/highscore-board/internal/store"
	. "github.com/smartystreets/goconvey/convey"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRepo(doc string) (*repository.Highscores, *store.MemoryStore) {
	s := store.NewMemoryStore([]byte(doc))
	return repository.New(s, discardLogger()), s
}

func documentLen(s *store.MemoryStore) int {
	doc, err := s.Load(context.Background())
	So(err, ShouldBeNil)
	players, err := repository.Decode(doc)
	So(err, ShouldBeNil)
	return len(players)
}

func TestListHighscores(t *testing.T) {
	Convey("Given a collection of John 100 and Alice 90", t, func() {
		ctx := context.Background()
		repo, _ := newRepo(`[{"name":"John","highscore":100},{"name":"Alice","highscore":90}]`)

		Convey("When listing descending", func() {
			got, err := repo.ListHighscores(ctx, 100, domain.SortOrderDesc)

			Convey("Then John is first", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []domain.LeaderboardEntry{
					{Player: "John", Highscore: 100},
					{Player: "Alice", Highscore: 90},
				})
			})
		})

		Convey("When listing ascending", func() {
			got, err := repo.ListHighscores(ctx, 100, domain.SortOrderAsc)

			Convey("Then the order is reversed", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []domain.LeaderboardEntry{
					{Player: "Alice", Highscore: 90},
					{Player: "John", Highscore: 100},
				})
			})
		})

		Convey("When listing descending with limit 1", func() {
			got, err := repo.ListHighscores(ctx, 1, domain.SortOrderDesc)

			Convey("Then only the top entry is returned", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []domain.LeaderboardEntry{{Player: "John", Highscore: 100}})
			})
		})

		Convey("When listing with an unknown sort", func() {
			got, err := repo.ListHighscores(ctx, 2, domain.SortOrder("sideways"))

			Convey("Then it behaves like descending", func() {
				So(err, ShouldBeNil)
				So(got[0].Player, ShouldEqual, "John")
			})
		})

		Convey("When listing twice without a mutation", func() {
			first, err1 := repo.ListHighscores(ctx, 10, domain.SortOrderAsc)
			second, err2 := repo.ListHighscores(ctx, 10, domain.SortOrderAsc)

			Convey("Then both results are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldResemble, first)
			})
		})
	})

	Convey("Given scores stored out of order with ties", t, func() {
		ctx := context.Background()
		repo, _ := newRepo(`[
			{"id":1,"name":"aa","highscore":10},
			{"id":2,"name":"bb","highscore":30},
			{"id":3,"name":"cc","highscore":10},
			{"id":4,"name":"dd","highscore":20}
		]`)

		Convey("When sorting none", func() {
			got, err := repo.ListHighscores(ctx, 100, domain.SortOrderNone)

			Convey("Then the store order is kept", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 4)
				So(got[0].ID, ShouldEqual, 1)
				So(got[3].ID, ShouldEqual, 4)
			})
		})

		Convey("When sorting descending", func() {
			got, err := repo.ListHighscores(ctx, 100, domain.SortOrderDesc)

			Convey("Then tied players keep their relative order", func() {
				So(err, ShouldBeNil)
				ids := []int{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
				So(ids, ShouldResemble, []int{2, 4, 1, 3})
			})
		})

		Convey("When sorting ascending", func() {
			got, err := repo.ListHighscores(ctx, 100, domain.SortOrderAsc)

			Convey("Then tied players keep their relative order", func() {
				So(err, ShouldBeNil)
				ids := []int{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
				So(ids, ShouldResemble, []int{1, 3, 4, 2})
			})
		})

		Convey("When the limit is zero, negative or above the cap", func() {
			for _, limit := range []int{0, -5, 101, 1000} {
				got, err := repo.ListHighscores(ctx, limit, domain.SortOrderDesc)
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 4)
			}
		})
	})

	Convey("Given an empty collection", t, func() {
		repo, _ := newRepo(`[]`)

		Convey("Then listing returns an empty, non-nil slice", func() {
			got, err := repo.ListHighscores(context.Background(), 10, domain.SortOrderDesc)
			So(err, ShouldBeNil)
			So(got, ShouldNotBeNil)
			So(len(got), ShouldEqual, 0)
		})
	})
}

func TestNormalizeLimit(t *testing.T) {
	Convey("Given limits around the bounds", t, func() {
		So(repository.NormalizeLimit(0), ShouldEqual, 100)
		So(repository.NormalizeLimit(-1), ShouldEqual, 100)
		So(repository.NormalizeLimit(1), ShouldEqual, 1)
		So(repository.NormalizeLimit(100), ShouldEqual, 100)
		So(repository.NormalizeLimit(101), ShouldEqual, 100)
	})
}

func TestGetByID(t *testing.T) {
	Convey("Given two players", t, func() {
		ctx := context.Background()
		repo, _ := newRepo(`[{"id":1,"name":"John","highscore":100},{"id":2,"name":"Alice","highscore":90}]`)

		Convey("When the id exists", func() {
			p, err := repo.GetByID(ctx, 1)

			Convey("Then the full record is returned", func() {
				So(err, ShouldBeNil)
				So(p, ShouldResemble, &domain.Player{ID: 1, Name: "John", Highscore: 100})
			})
		})

		Convey("When the id does not exist", func() {
			p, err := repo.GetByID(ctx, 3)

			Convey("Then nil is returned without an error", func() {
				So(err, ShouldBeNil)
				So(p, ShouldBeNil)
			})
		})

		Convey("When the id is not positive", func() {
			_, err := repo.GetByID(ctx, 0)

			Convey("Then it fails with invalid argument", func() {
				So(errors.Is(err, domain.ErrInvalidArgument), ShouldBeTrue)
			})
		})
	})
}

func TestCreateHighscore(t *testing.T) {
	Convey("Given an existing collection", t, func() {
		ctx := context.Background()
		repo, s := newRepo(`[{"id":1,"name":"John","highscore":100},{"id":2,"name":"Alice","highscore":90}]`)
		before := documentLen(s)

		Convey("When a valid highscore is created", func() {
			created, err := repo.CreateHighscore(ctx, "chummy", 100)
			So(err, ShouldBeNil)

			Convey("Then it gets id previous_count+1 and can be fetched", func() {
				So(created.ID, ShouldEqual, before+1)
				got, err := repo.GetByID(ctx, created.ID)
				So(err, ShouldBeNil)
				So(got.Highscore, ShouldEqual, 100)
				So(got.Name, ShouldEqual, "chummy")
			})
		})

		Convey("When the same name is used twice", func() {
			_, err1 := repo.CreateHighscore(ctx, "John", 5)
			_, err2 := repo.CreateHighscore(ctx, "John", 6)

			Convey("Then both records are stored", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(documentLen(s), ShouldEqual, before+2)
			})
		})

		Convey("When the name is too short", func() {
			_, err := repo.CreateHighscore(ctx, "d", 100)

			Convey("Then it fails validation and nothing is saved", func() {
				So(errors.Is(err, domain.ErrValidation), ShouldBeTrue)
				So(s.Saves(), ShouldEqual, 0)
			})
		})

		Convey("When the score is negative", func() {
			_, err := repo.CreateHighscore(ctx, "dummy", -1)

			Convey("Then it fails as an invalid argument", func() {
				So(errors.Is(err, domain.ErrInvalidArgument), ShouldBeTrue)
				So(s.Saves(), ShouldEqual, 0)
			})
		})
	})
}

func TestCreatePlayer(t *testing.T) {
	Convey("Given a player with a name and email", t, func() {
		ctx := context.Background()
		repo, s := newRepo(`[{"id":1,"name":"John","email":"john@example.com","highscore":100}]`)

		Convey("When creating a player with the same name", func() {
			_, err := repo.CreatePlayer(ctx, "John", "other@example.com")

			Convey("Then it conflicts and the collection is unchanged", func() {
				So(errors.Is(err, domain.ErrConflict), ShouldBeTrue)
				So(documentLen(s), ShouldEqual, 1)
				So(s.Saves(), ShouldEqual, 0)
			})
		})

		Convey("When creating a player with the same email", func() {
			_, err := repo.CreatePlayer(ctx, "Johnny", "JOHN@example.com")

			Convey("Then it conflicts and the collection is unchanged", func() {
				So(errors.Is(err, domain.ErrConflict), ShouldBeTrue)
				So(documentLen(s), ShouldEqual, 1)
			})
		})

		Convey("When creating a new player", func() {
			p, err := repo.CreatePlayer(ctx, "Alice", "alice@example.com")

			Convey("Then scores start at zero for every level", func() {
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, 2)
				So(p.Highscore, ShouldEqual, 0)
				So(p.LevelHighscores, ShouldResemble, []int{0, 0, 0, 0})
				So(documentLen(s), ShouldEqual, 2)
			})
		})

		Convey("When two new players have no email", func() {
			_, err1 := repo.CreatePlayer(ctx, "Alice", "")
			_, err2 := repo.CreatePlayer(ctx, "Bob", "")

			Convey("Then empty emails do not conflict", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
			})
		})

		Convey("When the name is invalid", func() {
			_, err := repo.CreatePlayer(ctx, "A", "a@example.com")

			Convey("Then it fails validation", func() {
				So(errors.Is(err, domain.ErrValidation), ShouldBeTrue)
			})
		})
	})

	Convey("Given a repository configured for two levels", t, func() {
		s := store.NewMemoryStore([]byte(`[]`))
		repo := repository.New(s, discardLogger(), repository.WithLevels(2))

		Convey("Then new players get two level slots", func() {
			p, err := repo.CreatePlayer(context.Background(), "Alice", "")
			So(err, ShouldBeNil)
			So(p.LevelHighscores, ShouldResemble, []int{0, 0})
		})
	})
}

func TestUpdateLevelScore(t *testing.T) {
	Convey("Given a player with level scores", t, func() {
		ctx := context.Background()
		repo, s := newRepo(`[{"id":1,"name":"dummy","highscore":70,"level_highscores":[50,20,0,0]}]`)

		Convey("When a level score is updated", func() {
			p, err := repo.UpdateLevelScore(ctx, 1, 3, 40)

			Convey("Then the overall highscore is the sum of all levels", func() {
				So(err, ShouldBeNil)
				So(p.LevelHighscores, ShouldResemble, []int{50, 20, 40, 0})
				So(p.Highscore, ShouldEqual, 110)
				stored, _ := repo.GetByID(ctx, 1)
				So(stored.Highscore, ShouldEqual, 110)
			})
		})

		Convey("When the new score is lower", func() {
			p, err := repo.UpdateLevelScore(ctx, 1, 1, 10)

			Convey("Then it is still overwritten", func() {
				So(err, ShouldBeNil)
				So(p.LevelHighscores[0], ShouldEqual, 10)
				So(p.Highscore, ShouldEqual, 30)
			})
		})

		Convey("When the id is unknown", func() {
			_, err := repo.UpdateLevelScore(ctx, 9, 1, 10)

			Convey("Then it fails with not found and nothing is saved", func() {
				So(errors.Is(err, domain.ErrNotFound), ShouldBeTrue)
				So(s.Saves(), ShouldEqual, 0)
			})
		})

		Convey("When the level is out of range", func() {
			_, err0 := repo.UpdateLevelScore(ctx, 1, 0, 10)
			_, err5 := repo.UpdateLevelScore(ctx, 1, 5, 10)

			Convey("Then it fails with invalid argument", func() {
				So(errors.Is(err0, domain.ErrInvalidArgument), ShouldBeTrue)
				So(errors.Is(err5, domain.ErrInvalidArgument), ShouldBeTrue)
			})
		})
	})

	Convey("Given a player without level scores", t, func() {
		ctx := context.Background()
		repo, s := newRepo(`[{"id":1,"name":"dummy","highscore":70}]`)

		Convey("When a level score is set", func() {
			_, err := repo.UpdateLevelScore(ctx, 1, 2, 15)

			Convey("Then it is rejected and the overall highscore is kept", func() {
				So(errors.Is(err, domain.ErrInvalidArgument), ShouldBeTrue)
				So(s.Saves(), ShouldEqual, 0)

				p, err := repo.GetByID(ctx, 1)
				So(err, ShouldBeNil)
				So(p.Highscore, ShouldEqual, 70)
				So(p.LevelHighscores, ShouldBeNil)
			})
		})
	})

	Convey("Given a player with fewer level slots than configured", t, func() {
		ctx := context.Background()
		s := store.NewMemoryStore([]byte(`[{"id":1,"name":"dummy","highscore":5,"level_highscores":[5,0]}]`))
		repo := repository.New(s, discardLogger())

		Convey("When a later level is set", func() {
			p, err := repo.UpdateLevelScore(ctx, 1, 4, 15)

			Convey("Then the slots grow and the total is recomputed", func() {
				So(err, ShouldBeNil)
				So(p.LevelHighscores, ShouldResemble, []int{5, 0, 0, 15})
				So(p.Highscore, ShouldEqual, 20)
			})
		})
	})
}

func TestUpdateHighscore(t *testing.T) {
	Convey("Given overall-only and level-tracked players", t, func() {
		ctx := context.Background()
		repo, _ := newRepo(`[{"id":1,"name":"John","highscore":100},{"id":2,"name":"dummy","highscore":5,"level_highscores":[5,0,0,0]}]`)

		Convey("When replacing an overall highscore", func() {
			p, err := repo.UpdateHighscore(ctx, 1, 250)

			Convey("Then the new value is stored", func() {
				So(err, ShouldBeNil)
				So(p.Highscore, ShouldEqual, 250)
			})
		})

		Convey("When replacing the total of a level-tracked player", func() {
			_, err := repo.UpdateHighscore(ctx, 2, 250)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, domain.ErrInvalidArgument), ShouldBeTrue)
			})
		})

		Convey("When the id is unknown", func() {
			_, err := repo.UpdateHighscore(ctx, 3, 1)
			So(errors.Is(err, domain.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestDeleteByID(t *testing.T) {
	Convey("Given three players", t, func() {
		ctx := context.Background()
		repo, s := newRepo(`[{"id":1,"name":"aa","highscore":1},{"id":2,"name":"bb","highscore":2},{"id":3,"name":"cc","highscore":3}]`)

		Convey("When one is deleted", func() {
			So(repo.DeleteByID(ctx, 2), ShouldBeNil)

			Convey("Then it is no longer retrievable", func() {
				p, err := repo.GetByID(ctx, 2)
				So(err, ShouldBeNil)
				So(p, ShouldBeNil)
				So(documentLen(s), ShouldEqual, 2)
			})

			Convey("Then a new record does not reuse an existing id", func() {
				p, err := repo.CreateHighscore(ctx, "dd", 4)
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, 4)
			})
		})

		Convey("When the id does not exist", func() {
			err := repo.DeleteByID(ctx, 42)

			Convey("Then it fails with not found without touching the store", func() {
				So(errors.Is(err, domain.ErrNotFound), ShouldBeTrue)
				So(s.Saves(), ShouldEqual, 0)
				So(documentLen(s), ShouldEqual, 3)
			})
		})

		Convey("When the id is not positive", func() {
			err := repo.DeleteByID(ctx, -1)
			So(errors.Is(err, domain.ErrInvalidArgument), ShouldBeTrue)
		})
	})
}

func TestStorageFailures(t *testing.T) {
	Convey("Given a store with no document", t, func() {
		ctx := context.Background()
		repo := repository.New(store.NewMemoryStore(nil), discardLogger())

		Convey("Then reads and writes surface storage unavailable", func() {
			_, err := repo.ListHighscores(ctx, 10, domain.SortOrderDesc)
			So(errors.Is(err, domain.ErrStorageUnavailable), ShouldBeTrue)

			_, err = repo.CreateHighscore(ctx, "dummy", 1)
			So(errors.Is(err, domain.ErrStorageUnavailable), ShouldBeTrue)
		})
	})

	Convey("Given a corrupt document", t, func() {
		ctx := context.Background()
		repo, s := newRepo(`{"not":"a list"`)

		Convey("Then operations fail with a corrupt document error and nothing is saved", func() {
			_, err := repo.GetByID(ctx, 1)
			So(errors.Is(err, domain.ErrCorruptDocument), ShouldBeTrue)

			_, err = repo.CreatePlayer(ctx, "dummy", "")
			So(errors.Is(err, domain.ErrCorruptDocument), ShouldBeTrue)
			So(s.Saves(), ShouldEqual, 0)
		})
	})

	Convey("Given a store whose saves fail", t, func() {
		ctx := context.Background()
		s := &failingSaveStore{MemoryStore: store.NewMemoryStore([]byte(`[{"id":1,"name":"aa","highscore":1}]`))}
		repo := repository.New(s, discardLogger())

		Convey("Then the mutation fails and the previous state remains", func() {
			err := repo.DeleteByID(ctx, 1)
			So(errors.Is(err, domain.ErrStorageUnavailable), ShouldBeTrue)
			p, err := repo.GetByID(ctx, 1)
			So(err, ShouldBeNil)
			So(p, ShouldNotBeNil)
		})
	})
}

type failingSaveStore struct {
	*store.MemoryStore
}

func (s *failingSaveStore) Save(ctx context.Context, doc []byte) error {
	return store.Unavailable("saving", errors.New("disk full"))
}

func TestCodecRoundTrip(t *testing.T) {
	Convey("Given a collection using every field", t, func() {
		players := []domain.Player{
			{ID: 1, Name: "John", Email: "john@example.com", Highscore: 100},
			{ID: 2, Name: "dummy", Highscore: 75, LevelHighscores: []int{50, 20, 5, 0}},
			{ID: 5, Name: "Alice", Highscore: 0},
		}

		Convey("When it is encoded and decoded", func() {
			doc, err := repository.Encode(players)
			So(err, ShouldBeNil)
			got, err := repository.Decode(doc)

			Convey("Then every field survives", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, players)
			})
		})

		Convey("An empty collection encodes as an empty list", func() {
			doc, err := repository.Encode(nil)
			So(err, ShouldBeNil)
			So(string(doc), ShouldEqual, "[]")
		})

		Convey("A blank document decodes as an empty collection", func() {
			got, err := repository.Decode([]byte("  \n"))
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 0)
		})

		Convey("A JSON null decodes as an empty collection", func() {
			got, err := repository.Decode([]byte("null"))
			So(err, ShouldBeNil)
			So(got, ShouldNotBeNil)
			So(len(got), ShouldEqual, 0)
		})
	})
}

// barrierStore holds every Load until the expected number of loads have
// started, forcing two read-modify-write cycles to interleave.
type barrierStore struct {
	*store.MemoryStore
	loads sync.WaitGroup
}

func (s *barrierStore) Load(ctx context.Context) ([]byte, error) {
	doc, err := s.MemoryStore.Load(ctx)
	s.loads.Done()
	s.loads.Wait()
	return doc, err
}

func TestConcurrentMutationsLoseUpdates(t *testing.T) {
	Convey("Given two mutations on the same player that interleave", t, func() {
		ctx := context.Background()
		s := &barrierStore{MemoryStore: store.NewMemoryStore([]byte(`[{"id":1,"name":"dummy","highscore":0,"level_highscores":[0,0,0,0]}]`))}
		s.loads.Add(2)
		repo := repository.New(s, discardLogger())

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, level := range []int{1, 2} {
			i, level := i, level
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = repo.UpdateLevelScore(ctx, 1, level, 10)
			}()
		}
		wg.Wait()

		Convey("Then both calls succeed but one update is lost", func() {
			So(errs[0], ShouldBeNil)
			So(errs[1], ShouldBeNil)

			doc, err := s.MemoryStore.Load(ctx)
			So(err, ShouldBeNil)
			players, err := repository.Decode(doc)
			So(err, ShouldBeNil)
			So(players[0].Highscore, ShouldEqual, 10)
			So(s.Saves(), ShouldEqual, 2)
		})
	})
}

func TestRankExtremeScores(t *testing.T) {
	Convey("Given scores at the ends of the int range", t, func() {
		players := []domain.Player{
			{ID: 1, Name: "big", Highscore: math.MaxInt},
			{ID: 2, Name: "low", Highscore: math.MinInt},
			{ID: 3, Name: "zero"},
		}

		Convey("Then ascending and descending orders do not overflow", func() {
			asc := repository.Rank(players, 0, domain.SortOrderAsc)
			So([]string{asc[0].Player, asc[1].Player, asc[2].Player}, ShouldResemble, []string{"low", "zero", "big"})

			desc := repository.Rank(players, 0, domain.SortOrderDesc)
			So([]string{desc[0].Player, desc[1].Player, desc[2].Player}, ShouldResemble, []string{"big", "zero", "low"})
		})
	})
}

// gateStore blocks the first Load after it has read the document, until
// release is closed or the caller's context ends. Later loads pass through.
type gateStore struct {
	*store.MemoryStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGateStore(doc string) *gateStore {
	return &gateStore{
		MemoryStore: store.NewMemoryStore([]byte(doc)),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (s *gateStore) Load(ctx context.Context) ([]byte, error) {
	doc, err := s.MemoryStore.Load(ctx)
	first := false
	s.once.Do(func() { first = true })
	if !first {
		return doc, err
	}
	close(s.entered)
	select {
	case <-s.release:
		return doc, err
	case <-ctx.Done():
		return nil, store.Unavailable("load", ctx.Err())
	}
}

func TestReadsSeeCompletedWrites(t *testing.T) {
	Convey("Given a list call stalled inside its load", t, func() {
		ctx := context.Background()
		s := newGateStore(`[{"id":1,"name":"John","highscore":100}]`)
		repo := repository.New(s, discardLogger())

		listed := make(chan []domain.LeaderboardEntry, 1)
		go func() {
			entries, _ := repo.ListHighscores(ctx, 10, domain.SortOrderDesc)
			listed <- entries
		}()
		<-s.entered

		Convey("When a create completes and the new id is read back", func() {
			created, err := repo.CreateHighscore(ctx, "Alice", 90)
			So(err, ShouldBeNil)
			So(created.ID, ShouldEqual, 2)

			got, err := repo.GetByID(ctx, 2)

			Convey("Then the read sees the saved record", func() {
				So(err, ShouldBeNil)
				So(got, ShouldNotBeNil)
				So(got.Name, ShouldEqual, "Alice")
			})

			close(s.release)
			So(<-listed, ShouldHaveLength, 1)
		})
	})

	Convey("Given a reader whose context is cancelled mid-load", t, func() {
		s := newGateStore(`[{"id":1,"name":"John","highscore":100}]`)
		repo := repository.New(s, discardLogger())

		cancelled, cancel := context.WithCancel(context.Background())
		failed := make(chan error, 1)
		go func() {
			_, err := repo.ListHighscores(cancelled, 10, domain.SortOrderDesc)
			failed <- err
		}()
		<-s.entered

		Convey("Then a concurrent reader with a live context still succeeds", func() {
			done := make(chan error, 1)
			go func() {
				_, err := repo.GetByID(context.Background(), 1)
				done <- err
			}()
			cancel()

			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(2 * time.Second):
				So("concurrent read timed out", ShouldBeEmpty)
			}
			So(errors.Is(<-failed, domain.ErrStorageUnavailable), ShouldBeTrue)
		})
	})
}
