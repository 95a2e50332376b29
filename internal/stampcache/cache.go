// Package stampcache persists per-clip probe results between runs so that
// repeated invocations against the same folder (e.g. while iterating with
// --debug-cmd) skip the ffprobe call for unchanged files. Entries are keyed
// by path and validated against file size and mtime.
package stampcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/backmassage/clipstitch/internal/probe"
)

const schema = `
CREATE TABLE IF NOT EXISTS stamps (
	path TEXT PRIMARY KEY,
	size INTEGER NOT NULL,
	mtime_ns INTEGER NOT NULL,
	created_unix_ns INTEGER,
	created_zone_offset INTEGER,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	rotation INTEGER NOT NULL,
	has_audio INTEGER NOT NULL,
	cached_at INTEGER NOT NULL
);`

// Cache is a SQLite-backed store of probe results. A nil *Cache is valid and
// behaves as a cache that always misses, so callers don't need to branch on
// whether caching is enabled.
type Cache struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the cache database at path. An empty
// path returns a nil cache, which is always a miss.
func Open(path string) (*Cache, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open stamp cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize stamp cache: %w", err)
	}
	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Lookup returns the cached probe result for path if one exists and its
// recorded size and mtime still match the file on disk.
func (c *Cache) Lookup(ctx context.Context, path string, size, mtimeNS int64) (*probe.ClipMeta, bool, error) {
	if c == nil || c.db == nil {
		return nil, false, nil
	}

	row := c.db.QueryRowContext(ctx, `
		SELECT size, mtime_ns, created_unix_ns, created_zone_offset,
		       width, height, rotation, has_audio
		FROM stamps WHERE path = ?`, path)

	var (
		gotSize, gotMtime   int64
		createdNS, zoneOffs sql.NullInt64
		width, height, rot  int
		hasAudio            int
	)
	err := row.Scan(&gotSize, &gotMtime, &createdNS, &zoneOffs, &width, &height, &rot, &hasAudio)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stamp cache lookup: %w", err)
	}
	if gotSize != size || gotMtime != mtimeNS {
		// Stale entry; the file changed since it was cached.
		return nil, false, nil
	}

	meta := &probe.ClipMeta{
		Path:     path,
		Width:    width,
		Height:   height,
		Rotation: rot,
		HasAudio: hasAudio != 0,
	}
	if createdNS.Valid {
		loc := time.UTC
		if zoneOffs.Valid && zoneOffs.Int64 != 0 {
			loc = time.FixedZone("", int(zoneOffs.Int64))
		}
		meta.CreationTime = time.Unix(0, createdNS.Int64).In(loc)
		meta.HasCreationTime = true
	}
	return meta, true, nil
}

// Store inserts or replaces the cache entry for path.
func (c *Cache) Store(ctx context.Context, path string, size, mtimeNS int64, meta *probe.ClipMeta) error {
	if c == nil || c.db == nil {
		return nil
	}

	var createdNS, zoneOffs sql.NullInt64
	if meta.HasCreationTime {
		createdNS = sql.NullInt64{Int64: meta.CreationTime.UnixNano(), Valid: true}
		_, offset := meta.CreationTime.Zone()
		zoneOffs = sql.NullInt64{Int64: int64(offset), Valid: true}
	}

	hasAudio := 0
	if meta.HasAudio {
		hasAudio = 1
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO stamps
			(path, size, mtime_ns, created_unix_ns, created_zone_offset,
			 width, height, rotation, has_audio, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mtime_ns = excluded.mtime_ns,
			created_unix_ns = excluded.created_unix_ns,
			created_zone_offset = excluded.created_zone_offset,
			width = excluded.width,
			height = excluded.height,
			rotation = excluded.rotation,
			has_audio = excluded.has_audio,
			cached_at = excluded.cached_at`,
		path, size, mtimeNS, createdNS, zoneOffs,
		meta.Width, meta.Height, meta.Rotation, hasAudio,
		time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("stamp cache store: %w", err)
	}
	return nil
}
