package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/clipstitch/internal/catalog"
	"github.com/backmassage/clipstitch/internal/config"
	"github.com/backmassage/clipstitch/internal/ffmpeg"
	"github.com/backmassage/clipstitch/internal/logging"
	"github.com/backmassage/clipstitch/internal/planner"
	"github.com/backmassage/clipstitch/internal/probe"
	"github.com/backmassage/clipstitch/internal/stampcache"
)

// Encoder produces one output movie from a planned target, writing to
// stagingPath. The concrete implementation shells out to ffmpeg; tests
// substitute a fake.
type Encoder interface {
	Encode(ctx context.Context, target *planner.OutputTarget, stagingPath string) ffmpeg.ExecResult
}

type ffmpegEncoder struct {
	cfg *config.Config
}

func (e ffmpegEncoder) Encode(ctx context.Context, target *planner.OutputTarget, stagingPath string) ffmpeg.ExecResult {
	args := ffmpeg.Build(e.cfg, target, stagingPath)
	return ffmpeg.Execute(ctx, e.cfg, args)
}

// Runner holds the collaborators for one merge run. Zero-value fields
// are filled with production defaults by Run.
type Runner struct {
	Cfg    *config.Config
	Log    *logging.Logger
	Reader catalog.MetadataReader
	Enc    Encoder
}

// Run executes the whole merge: catalog the input folder, sort and
// partition the clips, then encode every planned output movie.
// Encoding failures do not abort the run; each remaining partition is
// still attempted and the failure is reflected in the returned stats.
func (r *Runner) Run(ctx context.Context) (RunStats, error) {
	start := time.Now()
	var stats RunStats

	if r.Reader == nil {
		r.Reader = probe.Prober{}
	}
	if r.Enc == nil {
		r.Enc = ffmpegEncoder{cfg: r.Cfg}
	}

	cache := r.openCache(ctx)
	defer cache.Close()

	builder := catalog.Builder{Reader: r.Reader, Cache: cache, Log: r.Log}
	clips, err := builder.Build(ctx, r.Cfg.InputDir)
	if err != nil {
		return stats, err
	}
	stats.TotalClips = len(clips)
	r.Log.Info("Found %d clip(s) in %s", len(clips), r.Cfg.InputDir)

	sorted := planner.Sort(clips)
	r.warnAnomalies(sorted)

	parts, err := planner.Split(sorted, r.Cfg.NumParts)
	if err != nil {
		return stats, err
	}
	targets := planner.BuildTargets(parts, r.Cfg.InputDir, r.Cfg.OutputDir)

	for i := range targets {
		if ctx.Err() != nil {
			r.Log.Warn("Interrupted; %d partition(s) not processed", len(targets)-i)
			stats.Interrupted = true
			break
		}
		stats.add(r.processTarget(ctx, &targets[i]))
	}

	stats.Elapsed = time.Since(start)
	r.logSummary(&stats)
	return stats, nil
}

func (r *Runner) openCache(ctx context.Context) *stampcache.Cache {
	path := r.Cfg.ResolveCachePath()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.Log.Warn("Timestamp cache unavailable: %v", err)
		return nil
	}
	cache, err := stampcache.Open(path)
	if err != nil {
		r.Log.Warn("Timestamp cache unavailable: %v", err)
		return nil
	}
	r.Log.Debug("Timestamp cache: %s", path)
	return cache
}

// warnAnomalies flags conditions that usually mean the source folder
// needs attention: clips that fell back to filesystem times, clips with
// identical capture times, and clips with no audio stream (the concat
// filter requires one audio stream per input).
func (r *Runner) warnAnomalies(sorted []catalog.Clip) {
	for i := range sorted {
		c := &sorted[i]
		if c.Source == catalog.SourceFilesystem {
			r.Log.Outlier("No capture time in metadata, using file mtime: %s", filepath.Base(c.Path))
		}
		if (c.Width > 0 || c.Height > 0) && !c.HasAudio {
			r.Log.Outlier("Clip has no audio stream, its partition will likely fail: %s", filepath.Base(c.Path))
		}
	}
	for _, d := range planner.DuplicateTimestamps(sorted) {
		r.Log.Outlier("Identical capture time %s: %s and %s",
			d.First.Timestamp.Format(time.RFC3339), filepath.Base(d.First.Path), filepath.Base(d.Second.Path))
	}
}

func (r *Runner) processTarget(ctx context.Context, target *planner.OutputTarget) PartResult {
	res := PartResult{
		Number:     target.Partition.Number,
		OutputPath: target.OutputPath,
		ClipCount:  len(target.Partition.Clips),
	}

	if r.Cfg.SkipExisting {
		if _, err := os.Stat(target.OutputPath); err == nil {
			r.Log.Info("Skipping part %d: %s already exists (use --force to overwrite)",
				target.Partition.Number, filepath.Base(target.OutputPath))
			res.Status = StatusSkipped
			return res
		}
	}

	staging := stagingPath(target.OutputPath)
	args := ffmpeg.Build(r.Cfg, target, staging)
	if r.Cfg.DebugCmd {
		fmt.Println(ffmpeg.CommandString(args))
	}
	if r.Cfg.DryRun {
		r.Log.Info("[dry run] part %d: %d clip(s) -> %s",
			target.Partition.Number, len(target.Partition.Clips), target.OutputPath)
		res.Status = StatusPlanned
		return res
	}

	r.Log.Info("Merging part %d: %d clip(s) -> %s",
		target.Partition.Number, len(target.Partition.Clips), filepath.Base(target.OutputPath))
	start := time.Now()
	exec := r.Enc.Encode(ctx, target, staging)
	res.Elapsed = time.Since(start)

	if exec.Err != nil {
		os.Remove(staging)
		res.Status = StatusFailed
		res.Hint = ffmpeg.ClassifyFailure(exec.Stderr)
		r.logFailure(target, exec, res.Hint)
		return res
	}

	if err := os.Rename(staging, target.OutputPath); err != nil {
		os.Remove(staging)
		res.Status = StatusFailed
		res.Hint = fmt.Sprintf("could not move finished file into place: %v", err)
		r.Log.Error("Part %d: %s", target.Partition.Number, res.Hint)
		return res
	}

	if fi, err := os.Stat(target.OutputPath); err == nil {
		res.OutputBytes = fi.Size()
	}
	res.Status = StatusEncoded
	r.Log.Success("Part %d done in %s: %s",
		target.Partition.Number, res.Elapsed.Round(time.Second), filepath.Base(target.OutputPath))
	return res
}

func (r *Runner) logFailure(target *planner.OutputTarget, exec ffmpeg.ExecResult, hint string) {
	r.Log.Error("Part %d failed: %v", target.Partition.Number, exec.Err)
	if hint != "" {
		r.Log.Error("  hint: %s", hint)
	}
	for _, line := range stderrTail(exec.Stderr, 8) {
		r.Log.Error("  ffmpeg: %s", line)
	}
}

// stagingPath returns a hidden sibling of the final output path. The
// random component keeps concurrent or crashed runs from colliding, and
// the rename into place is atomic on the same filesystem.
func stagingPath(outputPath string) string {
	dir := filepath.Dir(outputPath)
	base := filepath.Base(outputPath)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.part", base, uuid.NewString()))
}

// stderrTail returns up to n trailing non-empty lines of ffmpeg output.
func stderrTail(stderr string, n int) []string {
	var lines []string
	for _, line := range strings.Split(stderr, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
