// Package catalog builds the per-run clip catalog: it scans the input
// directory (non-recursively) for supported clip files and resolves a
// timestamp for each one, falling back to filesystem times when the
// container has no usable creation tag.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/clipstitch/internal/probe"
	"github.com/backmassage/clipstitch/internal/stampcache"
)

// ErrNoClipsFound is returned when the input directory is missing or holds
// no files with a supported extension. It is fatal and reported before any
// encoding starts.
var ErrNoClipsFound = errors.New("no clips found")

// Supported clip extensions (lowercase, with leading dot).
var clipExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
}

// TimestampSource records where a clip's timestamp came from.
type TimestampSource int

const (
	// SourceMetadata means the timestamp was read from container tags.
	SourceMetadata TimestampSource = iota
	// SourceFilesystem means the container had no usable creation tag and
	// the file's birth or modification time was used instead.
	SourceFilesystem
)

// Clip is one catalog entry. Immutable once the catalog is built; SeqIndex
// is assigned by the planner after sorting and is unique within a run.
type Clip struct {
	Path      string
	Timestamp time.Time
	Source    TimestampSource

	// Coded dimensions and display rotation from the probe; zero when the
	// probe failed and the clip was admitted via the fallback policy.
	Width    int
	Height   int
	Rotation int
	HasAudio bool

	SeqIndex int
}

// DisplayDims returns the clip's dimensions as displayed, i.e. with width
// and height swapped for 90/270 degree rotations.
func (c *Clip) DisplayDims() (int, int) {
	if c.Rotation == 90 || c.Rotation == 270 {
		return c.Height, c.Width
	}
	return c.Width, c.Height
}

// MetadataReader extracts clip metadata for a single file. Implemented by
// probe.Prober; tests substitute a fake.
type MetadataReader interface {
	Probe(ctx context.Context, path string) (*probe.ClipMeta, error)
}

// Logger is the minimal logging interface the builder needs. Defined here
// (rather than importing the logging package) so catalog stays
// dependency-light and testable with a mock logger.
type Logger interface {
	Warn(string, ...interface{})
	Debug(string, ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

// Builder scans a directory and produces the clip catalog.
type Builder struct {
	Reader MetadataReader
	Cache  *stampcache.Cache // may be nil (cache disabled)
	Log    Logger            // may be nil
}

// Build scans dir non-recursively and returns one Clip per supported file,
// in directory enumeration order. Files the metadata reader cannot handle
// are still included, timestamped from the filesystem. Returns
// ErrNoClipsFound when dir is missing or has no supported files.
func (b *Builder) Build(ctx context.Context, dir string) ([]Clip, error) {
	log := b.Log
	if log == nil {
		log = nopLogger{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoClipsFound, err)
	}

	var clips []Clip
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !clipExtensions[ext] {
			log.Warn("Unsupported file format %q, skipping: %s", ext, name)
			continue
		}

		path := filepath.Join(dir, name)
		clip, ok := b.buildClip(ctx, path, log)
		if !ok {
			continue
		}
		clips = append(clips, clip)
	}

	if len(clips) == 0 {
		return nil, fmt.Errorf("%w: no supported clips in %s", ErrNoClipsFound, dir)
	}
	return clips, nil
}

// buildClip resolves metadata for one file, consulting the stamp cache
// first and applying the filesystem-time fallback on any metadata failure.
// The second return is false when the file cannot be admitted at all.
func (b *Builder) buildClip(ctx context.Context, path string, log Logger) (Clip, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		// The file vanished between ReadDir and Stat (or is a dangling
		// symlink); one missing clip must not abort the whole merge.
		log.Warn("Skipping %s: %v", filepath.Base(path), err)
		return Clip{}, false
	}
	size := fi.Size()
	mtimeNS := fi.ModTime().UnixNano()

	meta, hit, err := b.Cache.Lookup(ctx, path, size, mtimeNS)
	if err != nil {
		log.Debug("Stamp cache lookup failed for %s: %v", path, err)
	}
	if !hit {
		meta, err = b.Reader.Probe(ctx, path)
		if err != nil {
			log.Warn("Cannot read metadata for %s: %v (falling back to file times)", filepath.Base(path), err)
			meta = &probe.ClipMeta{Path: path}
		} else if storeErr := b.Cache.Store(ctx, path, size, mtimeNS, meta); storeErr != nil {
			log.Debug("Stamp cache store failed for %s: %v", path, storeErr)
		}
	}

	clip := Clip{
		Path:     path,
		Width:    meta.Width,
		Height:   meta.Height,
		Rotation: meta.Rotation,
		HasAudio: meta.HasAudio,
	}

	if meta.HasCreationTime {
		clip.Timestamp = meta.CreationTime
		clip.Source = SourceMetadata
		return clip, true
	}

	clip.Timestamp = fi.ModTime()
	clip.Source = SourceFilesystem
	log.Debug("No creation timestamp in %s, using file mtime %s",
		filepath.Base(path), clip.Timestamp.Format(time.RFC3339))
	return clip, true
}
