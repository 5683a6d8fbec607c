package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotsort/internal/shared"
)

// SortRun is one recorded playlist build.
type SortRun struct {
	ID           string        `json:"id"`
	Sequence     int           `json:"sequence"`
	Scheme       string        `json:"scheme"`
	Prefix       string        `json:"prefix"`
	Public       bool          `json:"public"`
	TotalTracks  int           `json:"total_tracks"`
	BucketCount  int           `json:"bucket_count"`
	CreatedCount int           `json:"created_count"`
	FailedCount  int           `json:"failed_count"`
	CreatedAt    time.Time     `json:"created_at"`
	DeletedAt    *time.Time    `json:"deleted_at,omitempty"`
	Playlists    []RunPlaylist `json:"playlists,omitempty"`
}

// RunPlaylist is one playlist a run created.
type RunPlaylist struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	BucketLabel string    `json:"bucket_label"`
	PlaylistID  string    `json:"playlist_id"`
	TrackCount  int       `json:"track_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// RunRepository persists sort runs and the playlists they created.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// NextSequence atomically allocates the next run sequence number.
//
// Sequence numbers provide human-readable ordering for runs. They are shown
// in history listings but never sent to the catalog.
func NextSequence(db *sql.DB) (int, error) {
	result, err := db.Exec("INSERT INTO sequences_sort_runs DEFAULT VALUES")
	if err != nil {
		return 0, fmt.Errorf("failed to allocate sequence: %w", err)
	}
	sequence, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence value: %w", err)
	}
	return int(sequence), nil
}

// Create inserts a run and its playlist rows in one transaction, generating
// the run's ID, sequence, and timestamp.
func (r *RunRepository) Create(run *SortRun) error {
	if run.Scheme == "" {
		return fmt.Errorf("%w: run scheme is required", shared.ErrInvalidInput)
	}

	sequence, err := NextSequence(r.db)
	if err != nil {
		return err
	}
	run.ID = shared.GenerateID()
	run.Sequence = sequence
	run.CreatedAt = time.Now().UTC()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sort_runs (id, sequence, scheme, prefix, public, total_tracks, bucket_count, created_count, failed_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Sequence,
		run.Scheme,
		run.Prefix,
		run.Public,
		run.TotalTracks,
		run.BucketCount,
		run.CreatedCount,
		run.FailedCount,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i := range run.Playlists {
		pl := &run.Playlists[i]
		pl.ID = shared.GenerateID()
		pl.RunID = run.ID
		pl.CreatedAt = run.CreatedAt

		_, err = tx.Exec(`
			INSERT INTO sort_run_playlists (id, run_id, bucket_label, playlist_id, track_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, pl.ID, pl.RunID, pl.BucketLabel, pl.PlaylistID, pl.TrackCount, pl.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert run playlist: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Get retrieves a run and its playlists by ID, excluding soft-deleted runs.
func (r *RunRepository) Get(id string) (*SortRun, error) {
	row := r.db.QueryRow(`
		SELECT id, sequence, scheme, prefix, public, total_tracks, bucket_count, created_count, failed_count, created_at, deleted_at
		FROM sort_runs
		WHERE id = ? AND deleted_at IS NULL
	`, id)

	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	playlists, err := r.runPlaylists(run.ID)
	if err != nil {
		return nil, err
	}
	run.Playlists = playlists
	return run, nil
}

// List retrieves the most recent runs, newest first. limit <= 0 returns all.
func (r *RunRepository) List(limit int) ([]*SortRun, error) {
	query := `
		SELECT id, sequence, scheme, prefix, public, total_tracks, bucket_count, created_count, failed_count, created_at, deleted_at
		FROM sort_runs
		WHERE deleted_at IS NULL
		ORDER BY sequence DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*SortRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Delete soft-deletes a run by ID.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`
		UPDATE sort_runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", id)
	}
	return nil
}

func (r *RunRepository) runPlaylists(runID string) ([]RunPlaylist, error) {
	rows, err := r.db.Query(`
		SELECT id, run_id, bucket_label, playlist_id, track_count, created_at
		FROM sort_run_playlists
		WHERE run_id = ?
		ORDER BY created_at ASC, bucket_label ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run playlists: %w", err)
	}
	defer rows.Close()

	var playlists []RunPlaylist
	for rows.Next() {
		var pl RunPlaylist
		if err := rows.Scan(&pl.ID, &pl.RunID, &pl.BucketLabel, &pl.PlaylistID, &pl.TrackCount, &pl.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run playlist: %w", err)
		}
		playlists = append(playlists, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return playlists, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*SortRun, error) {
	var (
		run       SortRun
		deletedAt sql.NullTime
	)

	err := row.Scan(
		&run.ID,
		&run.Sequence,
		&run.Scheme,
		&run.Prefix,
		&run.Public,
		&run.TotalTracks,
		&run.BucketCount,
		&run.CreatedCount,
		&run.FailedCount,
		&run.CreatedAt,
		&deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if deletedAt.Valid {
		run.DeletedAt = &deletedAt.Time
	}
	return &run, nil
}
