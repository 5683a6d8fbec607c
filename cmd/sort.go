package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotsort/internal/repositories"
	"github.com/desertthunder/spotsort/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SortGenre classifies the library by the primary artist's genres.
func (r *Runner) SortGenre(ctx context.Context, cmd *cli.Command) error {
	return r.sort(ctx, cmd, tasks.SchemeGenre)
}

// SortMood classifies the library by audio-feature moods.
func (r *Runner) SortMood(ctx context.Context, cmd *cli.Command) error {
	return r.sort(ctx, cmd, tasks.SchemeMood)
}

// SortDecade classifies the library by release decade.
func (r *Runner) SortDecade(ctx context.Context, cmd *cli.Command) error {
	return r.sort(ctx, cmd, tasks.SchemeDecade)
}

// SortArtist classifies the library by primary artist.
func (r *Runner) SortArtist(ctx context.Context, cmd *cli.Command) error {
	return r.sort(ctx, cmd, tasks.SchemeArtist)
}

// sort aggregates, classifies, previews, and (unless dry-run) materializes
// the buckets as playlists, recording the run in local history.
func (r *Runner) sort(ctx context.Context, cmd *cli.Command, scheme string) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	aggregate, err := r.aggregate(ctx, cmd)
	if err != nil {
		return err
	}

	if len(aggregate.Tracks) == 0 {
		r.writePlain("No tracks found in the selected sources.\n")
		return nil
	}

	progress, done := r.progressPrinter()
	result, err := r.engine.Classify(ctx, progress, scheme, aggregate.Tracks)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	if cmd.Bool("json") {
		payload := map[string]any{
			"scheme":       result.Scheme,
			"total_tracks": result.TotalTracks,
			"buckets":      result.Buckets,
			"unresolved":   result.Unresolved,
			"unscored":     result.Unscored,
			"missing_year": result.MissingYear,
		}
		if err := r.writeJSON(payload, true); err != nil {
			return err
		}
	} else {
		r.printPreview(result, aggregate.Duplicates)
	}

	if cmd.Bool("export") {
		if err := r.export(ctx, cmd, result); err != nil {
			return err
		}
	}

	if cmd.Bool("dry-run") {
		r.writePlain("\nDry run: no playlists were created.\n")
		return nil
	}

	opts := tasks.MaterializeOpts{
		Prefix:    cmd.String("prefix"),
		Public:    cmd.Bool("public"),
		MinTracks: cmd.Int("min-tracks"),
	}
	if opts.Prefix == "" {
		opts.Prefix = r.config.Sort.Prefix
	}
	// The artist scheme fans out into one bucket per artist, so it gets a
	// floor by default to avoid hundreds of tiny playlists.
	if scheme == tasks.SchemeArtist && !cmd.IsSet("min-tracks") {
		opts.MinTracks = 5
	}

	if !cmd.Bool("yes") {
		prompt := fmt.Sprintf("\nCreate %d playlists on Spotify? [y/N] ", result.Buckets.Len())
		if !r.confirm(prompt) {
			r.writePlain("Aborted.\n")
			return nil
		}
	}

	progress, done = r.progressPrinter()
	materialized, err := r.engine.Materialize(ctx, progress, result, opts)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("playlist build failed: %w", err)
	}

	r.recordRun(scheme, opts, result, materialized)
	r.printBuildResult(materialized)

	return nil
}

// export writes the classification buckets to local files.
func (r *Runner) export(ctx context.Context, cmd *cli.Command, result *tasks.ClassificationResult) error {
	progress, done := r.progressPrinter()
	defer func() {
		close(progress)
		<-done
	}()

	exported, err := r.engine.ExportBuckets(ctx, progress, result, tasks.ExportOpts{
		Format:    cmd.String("format"),
		OutputDir: cmd.String("output"),
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlain("\n✓ Exported %d of %d buckets to %s\n", exported.SuccessfulExports, exported.TotalBuckets, exported.OutputDirectory)
	if exported.FailedExports > 0 {
		r.writePlain("⚠ %d buckets failed to export:\n", exported.FailedExports)
		for _, file := range exported.Files {
			if file.Error != nil {
				r.writePlain("  %s: %v\n", file.Label, file.Error)
			}
		}
	}

	return nil
}

// printPreview renders the classification outcome before anything is written.
func (r *Runner) printPreview(result *tasks.ClassificationResult, duplicates int) {
	r.writePlainHeader(fmt.Sprintf("Buckets by %s", result.Scheme))
	r.writePlain("Tracks examined: %d (%d duplicates dropped)\n\n", result.TotalTracks, duplicates)

	for _, label := range result.Buckets.Labels() {
		r.writePlain("%s: %d tracks\n", label, len(result.Buckets.Tracks(label)))
	}

	if result.Unresolved > 0 {
		r.writePlain("\nUnresolved artists: %d\n", result.Unresolved)
	}
	if result.Unscored > 0 {
		r.writePlain("\nUnscored tracks (no audio features): %d\n", result.Unscored)
	}
	if result.MissingYear > 0 {
		r.writePlain("\nTracks without a release year: %d\n", result.MissingYear)
	}
}

// printBuildResult renders the outcome of a playlist build.
func (r *Runner) printBuildResult(result *tasks.MaterializeResult) {
	r.writePlainln("✓ Created %d playlists", result.CreatedCount)

	for _, res := range result.Results {
		if res.Error != nil {
			continue
		}
		r.writePlain("  %s: %d tracks", res.PlaylistName, res.Written)
		if res.Skipped > 0 {
			r.writePlain(" (%d unwritable skipped)", res.Skipped)
		}
		r.writePlain("\n")
	}

	if result.SkippedBuckets > 0 {
		r.writePlain("\nSkipped %d buckets below the track floor\n", result.SkippedBuckets)
	}

	if result.FailedCount > 0 {
		r.writePlain("\n⚠ %d buckets failed:\n", result.FailedCount)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  %s: %v\n", res.Label, res.Error)
			}
		}
	}
}

// recordRun persists the build outcome to local history. Failures are
// logged, never fatal: the playlists already exist on the catalog.
func (r *Runner) recordRun(scheme string, opts tasks.MaterializeOpts, result *tasks.ClassificationResult, materialized *tasks.MaterializeResult) {
	repo, err := r.runRepo()
	if err != nil {
		r.logger.Warn("failed to open run history", "error", err)
		return
	}

	run := &repositories.SortRun{
		Scheme:       scheme,
		Prefix:       opts.Prefix,
		Public:       opts.Public,
		TotalTracks:  result.TotalTracks,
		BucketCount:  result.Buckets.Len(),
		CreatedCount: materialized.CreatedCount,
		FailedCount:  materialized.FailedCount,
	}
	for _, res := range materialized.Results {
		if res.Error != nil || res.PlaylistID == "" {
			continue
		}
		run.Playlists = append(run.Playlists, repositories.RunPlaylist{
			BucketLabel: res.Label,
			PlaylistID:  res.PlaylistID,
			TrackCount:  res.Written,
		})
	}

	if err := repo.Create(run); err != nil {
		r.logger.Warn("failed to record sort run", "error", err)
		return
	}

	r.logger.Info("sort run recorded", "id", run.ID, "sequence", run.Sequence)
}
