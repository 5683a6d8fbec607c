package repositories

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/desertthunder/spotsort/internal/shared"
	_ "github.com/mattn/go-sqlite3"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func sampleRun() *SortRun {
	return &SortRun{
		Scheme:       "genre",
		Prefix:       "SpotifySort",
		TotalTracks:  120,
		BucketCount:  8,
		CreatedCount: 7,
		FailedCount:  1,
		Playlists: []RunPlaylist{
			{BucketLabel: "indie rock", PlaylistID: "pl1", TrackCount: 40},
			{BucketLabel: "dream pop", PlaylistID: "pl2", TrackCount: 25},
		},
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewRunRepository(setupDB(t))

		run := sampleRun()
		if err := repo.Create(run); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if run.ID == "" {
			t.Error("expected generated run ID")
		}
		if run.Sequence != 1 {
			t.Errorf("expected first sequence to be 1, got %d", run.Sequence)
		}
		if run.CreatedAt.IsZero() {
			t.Error("expected created timestamp to be set")
		}

		t.Run("requires a scheme", func(t *testing.T) {
			err := repo.Create(&SortRun{})
			if err == nil || !strings.Contains(err.Error(), "scheme") {
				t.Errorf("expected scheme validation error, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewRunRepository(setupDB(t))

		run := sampleRun()
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Scheme != "genre" || got.CreatedCount != 7 {
			t.Errorf("unexpected run: %+v", got)
		}
		if len(got.Playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(got.Playlists))
		}
		for _, pl := range got.Playlists {
			if pl.RunID != run.ID {
				t.Errorf("playlist %s not linked to run", pl.ID)
			}
		}

		t.Run("missing run", func(t *testing.T) {
			if _, err := repo.Get("nope"); err == nil {
				t.Error("expected error for missing run")
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		repo := NewRunRepository(setupDB(t))

		for _, scheme := range []string{"genre", "mood", "decade"} {
			run := sampleRun()
			run.Scheme = scheme
			run.Playlists = nil
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		t.Run("newest first", func(t *testing.T) {
			runs, err := repo.List(0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(runs) != 3 {
				t.Fatalf("expected 3 runs, got %d", len(runs))
			}
			if runs[0].Scheme != "decade" || runs[2].Scheme != "genre" {
				t.Errorf("unexpected order: %s, %s, %s", runs[0].Scheme, runs[1].Scheme, runs[2].Scheme)
			}
		})

		t.Run("honors the limit", func(t *testing.T) {
			runs, err := repo.List(2)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(runs) != 2 {
				t.Errorf("expected 2 runs, got %d", len(runs))
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewRunRepository(setupDB(t))

		run := sampleRun()
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		t.Run("deleted runs drop out of queries", func(t *testing.T) {
			if _, err := repo.Get(run.ID); err == nil {
				t.Error("expected deleted run to be invisible")
			}
			runs, err := repo.List(0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(runs) != 0 {
				t.Errorf("expected empty list, got %d runs", len(runs))
			}
		})

		t.Run("double delete fails", func(t *testing.T) {
			if err := repo.Delete(run.ID); err == nil {
				t.Error("expected error deleting twice")
			}
		})
	})
}

func TestNextSequence(t *testing.T) {
	db := setupDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}
}
