package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/spotsort/internal/formatter"
	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/shared"
)

// ExportOpts contains configuration for bucket exports.
type ExportOpts struct {
	Format     string // Export format: json, csv, markdown, txt
	OutputDir  string // Base output directory (default: spotsort_export_{epoch})
	NumWorkers int    // Concurrent workers (default: 5)
}

// bucketExportJob is one bucket queued for a worker.
type bucketExportJob struct {
	Index  int
	Label  string
	Tracks []models.Track
}

// BucketFileResult is the outcome of exporting one bucket to disk.
type BucketFileResult struct {
	Label      string `json:"label"`
	File       string `json:"file,omitempty"`
	TrackCount int    `json:"track_count"`
	Success    bool   `json:"success"`
	Error      error  `json:"-"`
}

// BucketExportResult summarizes a bucket export run.
type BucketExportResult struct {
	TotalBuckets      int                `json:"total_buckets"`
	SuccessfulExports int                `json:"successful_exports"`
	FailedExports     int                `json:"failed_exports"`
	OutputDirectory   string             `json:"output_directory"`
	ManifestPath      string             `json:"manifest_path,omitempty"`
	Files             []BucketFileResult `json:"files"`
}

// ExportBuckets writes classification buckets to disk concurrently, one file
// per bucket, and generates a manifest summarizing the run.
//
// Workers pull buckets from a queue so a slow disk never serializes the
// whole export. Per-bucket failures are recorded in the result without
// aborting the remaining buckets.
func (e *LibraryEngine) ExportBuckets(ctx context.Context, prog chan<- ProgressUpdate, result *ClassificationResult, opts ExportOpts) (*BucketExportResult, error) {
	if result == nil || result.Buckets == nil {
		return nil, fmt.Errorf("%w: nothing to export", shared.ErrInvalidArgument)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("spotsort_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	labels := result.Buckets.Labels()
	out := &BucketExportResult{
		TotalBuckets:    len(labels),
		OutputDirectory: opts.OutputDir,
		Files:           make([]BucketFileResult, 0, len(labels)),
	}

	jobs := make(chan bucketExportJob, len(labels))
	results := make(chan BucketFileResult, len(labels))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	for i, label := range labels {
		e.sendProgress(prog, exportingBucketUpdate(i+1, len(labels), label))
		jobs <- bucketExportJob{Index: i, Label: label, Tracks: result.Buckets.Tracks(label)}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		out.Files = append(out.Files, res)

		if res.Success {
			out.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(labels), res.Label, 1))
		} else {
			out.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(labels), res.Label, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteExportManifest(out, manifestPath); err != nil {
		return out, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	out.ManifestPath = manifestPath
	return out, nil
}

// exportWorker is a worker goroutine that exports buckets from the jobs channel.
func (e *LibraryEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan bucketExportJob,
	results chan<- BucketFileResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- exportSingleBucket(job, opts)
	}
}

// exportSingleBucket exports a single bucket to the appropriate format.
func exportSingleBucket(job bucketExportJob, opts ExportOpts) BucketFileResult {
	result := BucketFileResult{
		Label:      job.Label,
		TrackCount: len(job.Tracks),
	}

	base := filepath.Join(opts.OutputDir, sanitizeLabel(job.Label))

	var path string
	var err error
	switch opts.Format {
	case "csv":
		path = base + ".csv"
		err = formatter.WriteTracksCSV(job.Tracks, path)
	case "markdown":
		path = base + ".md"
		err = formatter.WriteTracksMarkdown(job.Label, job.Tracks, path)
	case "txt":
		path = base + ".txt"
		err = formatter.WriteTracksText(job.Label, job.Tracks, path)
	case "json":
		fallthrough
	default:
		path = base + ".json"
		err = formatter.WriteTracksJSON(job.Label, job.Tracks, path)
	}

	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}
	result.File = path
	result.Success = true
	return result
}

// sanitizeLabel converts a bucket label into a safe filename stem.
func sanitizeLabel(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	stem := strings.Trim(b.String(), "_")
	if stem == "" {
		return "bucket"
	}
	return stem
}
