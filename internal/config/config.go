// Package config holds runtime configuration: defaults, the optional TOML
// config file, and validation. CLI flags are bound to Config fields by the
// cmd package; file settings cover only the encode/overlay/cache knobs that
// have no flag equivalent, so there is no precedence conflict between them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// ffmpeg loglevel names accepted by -v/--verbosity and passed straight
// through to the encoder's -loglevel option.
var ffmpegLogLevels = map[string]bool{
	"quiet":   true,
	"panic":   true,
	"fatal":   true,
	"error":   true,
	"warning": true,
	"info":    true,
	"verbose": true,
	"debug":   true,
	"trace":   true,
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [Config.ApplyFile], then mutated by cobra flag
// binding before being passed (by pointer) to packages that need it.
type Config struct {
	// Paths.
	InputDir  string
	OutputDir string

	// Merge behavior.
	NumParts     int    // Number of output movies to split the clips into. Default: 1.
	OverlayClock bool   // Default: true. Cleared by --no-date.
	Verbosity    string // ffmpeg loglevel. Default: "quiet".
	DebugCmd     bool   // Print the constructed ffmpeg invocation.
	DryRun       bool   // Plan and print only; do not encode.
	SkipExisting bool   // Default: true. Cleared by --force.

	// Encode settings (config-file tunable).
	VideoCodec  string // Default: "libx264".
	AudioCodec  string // Default: "aac".
	FrameWidth  int    // Output frame width. Default: 1920.
	FrameHeight int    // Output frame height. Default: 1080.

	// Overlay settings (config-file tunable).
	FontSize  int    // Default: 36.
	FontColor string // Default: "white".

	// Timestamp cache.
	CacheEnabled bool   // Default: true.
	CachePath    string // Empty means <user cache dir>/clipstitch/stamps.db.

	// Display and logging.
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// the config file and CLI flags apply overrides.
func DefaultConfig() Config {
	return Config{
		NumParts:     1,
		OverlayClock: true,
		Verbosity:    "quiet",
		SkipExisting: true,
		VideoCodec:   "libx264",
		AudioCodec:   "aac",
		FrameWidth:   1920,
		FrameHeight:  1080,
		FontSize:     36,
		FontColor:    "white",
		CacheEnabled: true,
		ColorMode:    ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum and numeric fields. When not in CheckOnly mode, it
// also requires that both input and output directory paths are non-empty.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if !ffmpegLogLevels[c.Verbosity] {
		return fmt.Errorf("invalid verbosity %q (use an ffmpeg loglevel, e.g. quiet, error, info)", c.Verbosity)
	}

	if c.FrameWidth <= 0 || c.FrameHeight <= 0 {
		return errors.New("frame dimensions must be positive")
	}
	// libx264 rejects odd dimensions.
	if c.FrameWidth%2 != 0 || c.FrameHeight%2 != 0 {
		return errors.New("frame dimensions must be even")
	}
	if c.FontSize <= 0 {
		return errors.New("overlay font size must be positive")
	}
	if c.VideoCodec == "" || c.AudioCodec == "" {
		return errors.New("video and audio codecs must not be empty")
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("both --input-dir and --output-dir are required")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory. This prevents a later run from picking up
// its own output files. Both arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}

// ResolveCachePath returns the timestamp cache location, defaulting to
// <user cache dir>/clipstitch/stamps.db. An empty return value disables the
// cache (no resolvable location).
func (c *Config) ResolveCachePath() string {
	if !c.CacheEnabled {
		return ""
	}
	if c.CachePath != "" {
		return c.CachePath
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "clipstitch", "stamps.db")
}
