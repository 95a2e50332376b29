package config

// This file implements the optional TOML config file. Keys absent from the
// document leave the corresponding Config field untouched, so the file
// overlays DefaultConfig rather than replacing it.

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// fileConfig mirrors the TOML document layout. Only settings without a CLI
// flag equivalent live here.
type fileConfig struct {
	Encode  encodeSection  `toml:"encode"`
	Overlay overlaySection `toml:"overlay"`
	Cache   cacheSection   `toml:"cache"`
}

type encodeSection struct {
	VideoCodec  *string `toml:"video_codec"`
	AudioCodec  *string `toml:"audio_codec"`
	FrameWidth  *int    `toml:"frame_width"`
	FrameHeight *int    `toml:"frame_height"`
}

type overlaySection struct {
	FontSize  *int    `toml:"font_size"`
	FontColor *string `toml:"font_color"`
}

type cacheSection struct {
	Enabled *bool   `toml:"enabled"`
	Path    *string `toml:"path"`
}

// DefaultPath returns the conventional config file location,
// <user config dir>/clipstitch/config.toml, or "" when the user config
// directory cannot be determined.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "clipstitch", "config.toml")
}

// ApplyFile overlays settings from the TOML file at path onto c. A missing
// file is only an error when the path was explicitly requested; callers pass
// explicit=false for the default location so an absent file is a no-op.
func (c *Config) ApplyFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.Encode.VideoCodec != nil {
		c.VideoCodec = *fc.Encode.VideoCodec
	}
	if fc.Encode.AudioCodec != nil {
		c.AudioCodec = *fc.Encode.AudioCodec
	}
	if fc.Encode.FrameWidth != nil {
		c.FrameWidth = *fc.Encode.FrameWidth
	}
	if fc.Encode.FrameHeight != nil {
		c.FrameHeight = *fc.Encode.FrameHeight
	}
	if fc.Overlay.FontSize != nil {
		c.FontSize = *fc.Overlay.FontSize
	}
	if fc.Overlay.FontColor != nil {
		c.FontColor = *fc.Overlay.FontColor
	}
	if fc.Cache.Enabled != nil {
		c.CacheEnabled = *fc.Cache.Enabled
	}
	if fc.Cache.Path != nil {
		c.CachePath = *fc.Cache.Path
	}
	return nil
}

// WriteSample writes the embedded sample config to path, creating parent
// directories. It refuses to overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
