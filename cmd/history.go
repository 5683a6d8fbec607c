package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotsort/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList shows recent sort runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.runRepo()
	if err != nil {
		return err
	}

	runs, err := repo.List(cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		r.writePlain("No sort runs recorded yet.\n")
		return nil
	}

	r.writePlain("Found %d runs:\n\n", len(runs))
	for _, run := range runs {
		r.writePlain("#%d %s (%s)\n", run.Sequence, run.Scheme, run.CreatedAt.Format(time.RFC3339))
		r.writePlain("   ID: %s\n", run.ID)
		r.writePlain("   Tracks: %d across %d buckets\n", run.TotalTracks, run.BucketCount)
		r.writePlain("   Playlists: %d created, %d failed\n\n", run.CreatedCount, run.FailedCount)
	}

	return nil
}

// HistoryShow displays one run and the playlists it created.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run ID is required", shared.ErrMissingArgument)
	}

	repo, err := r.runRepo()
	if err != nil {
		return err
	}

	run, err := repo.Get(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(run, true)
	}

	r.writePlainHeader(fmt.Sprintf("Run #%d (%s)", run.Sequence, run.Scheme))
	r.writePlain("ID:        %s\n", run.ID)
	r.writePlain("Created:   %s\n", run.CreatedAt.Format(time.RFC3339))
	r.writePlain("Prefix:    %s\n", run.Prefix)
	r.writePlain("Visibility: %s\n", shared.VisibilityString(run.Public))
	r.writePlain("Tracks:    %d across %d buckets\n", run.TotalTracks, run.BucketCount)
	r.writePlain("Playlists: %d created, %d failed\n", run.CreatedCount, run.FailedCount)

	if len(run.Playlists) > 0 {
		r.writePlainln("Created playlists:")
		for _, pl := range run.Playlists {
			r.writePlain("  %s → %s (%d tracks)\n", pl.BucketLabel, pl.PlaylistID, pl.TrackCount)
		}
	}

	return nil
}

// HistoryDelete soft-deletes a recorded run. Playlists on the catalog are
// never touched.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run ID is required", shared.ErrMissingArgument)
	}

	repo, err := r.runRepo()
	if err != nil {
		return err
	}

	if err := repo.Delete(id); err != nil {
		return err
	}

	r.writePlain("✓ Run %s deleted from history\n", id)
	return nil
}
