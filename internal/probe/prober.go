// Package probe extracts clip metadata via a single ffprobe JSON call per
// file: creation timestamp, video dimensions, display rotation, and audio
// stream presence.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Creation timestamp tags in order of precedence. QuickTime writes the
// local-time creationdate tag alongside the UTC creation_time tag; the
// local one is preferred because the burned-in clock should show wall time
// at the camera, not UTC.
var creationTags = []string{
	"com.apple.quicktime.creationdate",
	"creation_time",
}

// Prober runs ffprobe. The zero value is ready to use; it exists as a type
// so callers can depend on a narrow interface and tests can substitute it.
type Prober struct{}

// Probe runs a single ffprobe JSON call against path and returns the parsed
// clip metadata.
func (Prober) Probe(ctx context.Context, path string) (*ClipMeta, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	meta, err := ParseJSON(out)
	if err != nil {
		return nil, err
	}
	meta.Path = path
	return meta, nil
}

// ParseJSON converts raw ffprobe JSON output into a ClipMeta.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*ClipMeta, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildMeta(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename string            `json:"filename"`
	Duration string            `json:"duration"`
	Tags     map[string]string `json:"tags"`
}

type ffprobeStream struct {
	Index        int               `json:"index"`
	CodecType    string            `json:"codec_type"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Disposition  map[string]int    `json:"disposition"`
	Tags         map[string]string `json:"tags"`
	SideDataList []ffprobeSideData `json:"side_data_list"`
}

type ffprobeSideData struct {
	SideDataType string      `json:"side_data_type"`
	Rotation     json.Number `json:"rotation"`
}

// --- Conversion from wire types to domain types ---

func buildMeta(raw *ffprobeOutput) *ClipMeta {
	meta := &ClipMeta{}

	if ts, ok := creationTimeFromTags(raw.Format.Tags); ok {
		meta.CreationTime = ts
		meta.HasCreationTime = true
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			if s.Disposition["attached_pic"] == 1 {
				continue
			}
			// First real video stream wins.
			if meta.Width == 0 && meta.Height == 0 {
				meta.Width = s.Width
				meta.Height = s.Height
				meta.Rotation = rotationFromStream(s)
				if !meta.HasCreationTime {
					if ts, ok := creationTimeFromTags(s.Tags); ok {
						meta.CreationTime = ts
						meta.HasCreationTime = true
					}
				}
			}
		case "audio":
			meta.HasAudio = true
		}
	}
	return meta
}

// creationTimeFromTags scans a tag map for the known creation timestamp
// keys, in precedence order, and parses the first parseable value.
func creationTimeFromTags(tags map[string]string) (time.Time, bool) {
	for _, key := range creationTags {
		val, ok := tags[key]
		if !ok || strings.TrimSpace(val) == "" {
			continue
		}
		if ts, err := parseCreationTime(val); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Layouts observed in the wild. creation_time is RFC 3339 (usually with
// fractional seconds and a Z suffix); the QuickTime creationdate tag uses a
// numeric zone offset without a colon; older muxers wrote a space-separated
// form.
var creationLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
}

func parseCreationTime(val string) (time.Time, error) {
	val = strings.TrimSpace(val)
	for _, layout := range creationLayouts {
		if ts, err := time.Parse(layout, val); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized creation time %q", val)
}

// rotationFromStream resolves the display rotation from the stream's
// display-matrix side data, falling back to the legacy rotate tag.
// The result is normalized to 0, 90, 180 or 270.
func rotationFromStream(s *ffprobeStream) int {
	for _, sd := range s.SideDataList {
		if sd.Rotation == "" {
			continue
		}
		// ffprobe may emit the rotation as a float (e.g. -90.0).
		if f, err := sd.Rotation.Float64(); err == nil {
			return normalizeRotation(int(f))
		}
	}
	if v, ok := s.Tags["rotate"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return normalizeRotation(n)
		}
	}
	return 0
}

func normalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	// Snap to the nearest quarter turn; display matrices only ever encode
	// multiples of 90 but may arrive as e.g. 89.98 after float rounding.
	switch {
	case deg >= 45 && deg < 135:
		return 90
	case deg >= 135 && deg < 225:
		return 180
	case deg >= 225 && deg < 315:
		return 270
	default:
		return 0
	}
}
