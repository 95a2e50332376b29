// Command clipstitch merges a folder of short video clips into one or
// more longer movies ordered by capture timestamp, optionally burning
// the capture date and time into each clip.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/backmassage/clipstitch/internal/check"
	"github.com/backmassage/clipstitch/internal/config"
	"github.com/backmassage/clipstitch/internal/display"
	"github.com/backmassage/clipstitch/internal/logging"
	"github.com/backmassage/clipstitch/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
// When built with plain "go build" these retain their defaults.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.DefaultConfig()
	var (
		configPath string
		noDate     bool
		force      bool
		noCache    bool
		colorMode  string
		initConfig bool
	)
	exitCode := 0

	rootCmd := &cobra.Command{
		Use:     "clipstitch",
		Short:   "Merge a folder of short clips into timestamp-ordered movies",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Long: `Clipstitch concatenates every video clip in a folder into one or more
longer movies, ordered by capture timestamp. Clips are scaled and padded
to a common frame, and the capture date and time can be burned into the
corner of each clip.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initConfig {
				path := configPath
				if path == "" {
					path = config.DefaultPath()
				}
				if err := config.WriteSample(path); err != nil {
					return err
				}
				fmt.Println("Wrote sample config to", path)
				return nil
			}

			// Defaults, then config file, then flags.
			explicit := configPath != ""
			if !explicit {
				configPath = config.DefaultPath()
			}
			if err := cfg.ApplyFile(configPath, explicit); err != nil {
				return err
			}
			cfg.OverlayClock = cfg.OverlayClock && !noDate
			cfg.SkipExisting = !force
			if noCache {
				cfg.CacheEnabled = false
			}
			cfg.ColorMode = config.ColorMode(colorMode)
			cfg.InputDir = config.NormalizeDirArg(cfg.InputDir)
			cfg.OutputDir = config.NormalizeDirArg(cfg.OutputDir)

			if err := cfg.Validate(); err != nil {
				return err
			}
			exitCode = realMain(&cfg)
			return nil
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&cfg.InputDir, "input-dir", "i", "", "folder containing the clips to merge")
	f.StringVarP(&cfg.OutputDir, "output-dir", "o", ".", "folder to write the merged movie(s) to")
	f.IntVarP(&cfg.NumParts, "num-parts", "n", cfg.NumParts, "number of output movies to split the clips across")
	f.BoolVar(&noDate, "no-date", false, "do not burn the capture date/time into the clips")
	f.StringVarP(&cfg.Verbosity, "verbosity", "v", cfg.Verbosity, "ffmpeg log level (quiet|error|warning|info|verbose|debug)")
	f.BoolVar(&cfg.DebugCmd, "debug-cmd", false, "print each ffmpeg command before running it")
	f.StringVarP(&configPath, "config", "c", "", "config file path (default "+config.DefaultPath()+")")
	f.BoolVarP(&force, "force", "f", false, "overwrite output files that already exist")
	f.BoolVarP(&cfg.DryRun, "dry-run", "d", false, "plan the partitions but do not encode anything")
	f.BoolVar(&cfg.CheckOnly, "check", false, "run system diagnostics and exit")
	f.BoolVar(&noCache, "no-cache", false, "disable the clip metadata cache")
	f.StringVar(&colorMode, "color", string(cfg.ColorMode), "colorize output (auto|always|never)")
	f.StringVarP(&cfg.LogFile, "log", "l", "", "append a plain-text copy of all output to this file")
	f.BoolVar(&initConfig, "init-config", false, "write a commented sample config file and exit")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "clipstitch: %v\n", err)
		return 1
	}
	return exitCode
}

// realMain runs everything that needs the logger: banner, diagnostics,
// path validation, locking, and the merge itself.
func realMain(cfg *config.Config) int {
	log, err := logging.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "clipstitch: %v\n", err)
		return 1
	}
	defer log.Close()

	display.PrintBanner()

	if cfg.CheckOnly {
		check.RunCheck(cfg, log)
		return 0
	}

	// Resolve and validate paths: input must exist, output is created if
	// needed, and output must not be inside input (the merged movie would
	// be picked up as a clip on the next run).
	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		log.Error("Input not found: %s", cfg.InputDir)
		return 1
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Error("Cannot create output directory: %s", cfg.OutputDir)
		return 1
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return 1
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		log.Error("%v", err)
		log.Error("Choose an output path outside: %s", cfg.InputDir)
		return 1
	}

	log.Info("=== Clipstitch v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.InputDir)
	log.Info("Out: %s", cfg.OutputDir)
	if cfg.DryRun {
		log.Warn("DRY RUN — no files will be written")
	}
	log.Info("")

	// Fail fast if ffmpeg/ffprobe or the configured encoder are unavailable.
	if err := check.CheckDeps(cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	// A second run writing the same output folder would race on the
	// final renames, so take an advisory lock for the duration.
	lock := flock.New(filepath.Join(outputAbs, ".clipstitch.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Error("Cannot lock output directory: %v", err)
		return 1
	}
	if !locked {
		log.Error("Another clipstitch run is writing to %s", cfg.OutputDir)
		return 1
	}
	defer lock.Unlock()

	// Cancel the run on SIGINT/SIGTERM so the merge stops between
	// partitions without leaving partial output.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, finishing current partition…")
		cancel()
	}()

	runner := pipeline.Runner{Cfg: cfg, Log: log}
	stats, err := runner.Run(ctx)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	if !stats.OK() {
		return 1
	}
	return 0
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
