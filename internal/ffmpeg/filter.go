package ffmpeg

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/backmassage/clipstitch/internal/catalog"
	"github.com/backmassage/clipstitch/internal/config"
)

// FilterGraph assembles the complete -filter_complex expression for a
// partition: one per-clip normalization chain labeled [vN], then the concat
// node joining every [vN] with its clip's audio stream.
func FilterGraph(cfg *config.Config, clips []catalog.Clip) string {
	var sb strings.Builder
	for i, clip := range clips {
		fmt.Fprintf(&sb, "[%d:v]%s[v%d];", i, ClipFilter(cfg, &clip), i)
	}
	for i := range clips {
		fmt.Fprintf(&sb, "[v%d][%d:a]", i, i)
	}
	fmt.Fprintf(&sb, "concat=n=%d:v=1:a=1[v][a]", len(clips))
	return sb.String()
}

// ClipFilter builds the normalization chain for one clip: reset timestamps,
// scale to fit the output frame, pad to the full frame with centered black
// bars, square the sample aspect, and (when enabled and the clip has a real
// capture timestamp) burn in the date/time clock.
func ClipFilter(cfg *config.Config, clip *catalog.Clip) string {
	parts := []string{"setpts=PTS-STARTPTS"}

	w, h := clip.DisplayDims()
	if w > 0 && h > 0 {
		tw, th := fitDims(w, h, cfg.FrameWidth, cfg.FrameHeight)
		if tw != w || th != h {
			parts = append(parts, fmt.Sprintf("scale=%d:%d", tw, th))
		}
		if tw < cfg.FrameWidth || th < cfg.FrameHeight {
			parts = append(parts, fmt.Sprintf(
				"pad=width=%d:height=%d:x=%d:y=%d:color=black",
				cfg.FrameWidth, cfg.FrameHeight,
				(cfg.FrameWidth-tw)/2, (cfg.FrameHeight-th)/2))
		}
	} else {
		// Dimensions unknown (metadata probe failed); let ffmpeg resolve
		// the fit at runtime instead of precomputing it.
		parts = append(parts,
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", cfg.FrameWidth, cfg.FrameHeight),
			fmt.Sprintf("pad=width=%d:height=%d:x=(ow-iw)/2:y=(oh-ih)/2:color=black", cfg.FrameWidth, cfg.FrameHeight))
	}

	parts = append(parts, "setsar=1")

	if cfg.OverlayClock && clip.Source == catalog.SourceMetadata {
		parts = append(parts, overlayFilter(cfg, clip))
	}

	return strings.Join(parts, ",")
}

// overlayFilter renders the camcorder-style clock in the bottom-right
// corner for the clip's duration, via drawtext strftime expansion.
func overlayFilter(cfg *config.Config, clip *catalog.Clip) string {
	return fmt.Sprintf("drawtext=expansion=strftime:basetime=%d"+
		":fontcolor=%s:fontsize=%d"+
		`:text='%%^b %%d, %%Y%%n%%l\:%%M%%p'`+
		":x=w-text_w-2*max_glyph_w:y=h-4*lh",
		overlayBasetime(clip.Timestamp), cfg.FontColor, cfg.FontSize)
}

// overlayBasetime returns the drawtext basetime in microseconds. strftime
// expansion formats the running time in the host's local zone, so the
// timestamp's wall-clock fields are re-anchored in local time first; the
// burned-in clock then reads as the time at the camera no matter where the
// merge runs.
func overlayBasetime(ts time.Time) int64 {
	local := time.Date(ts.Year(), ts.Month(), ts.Day(),
		ts.Hour(), ts.Minute(), ts.Second(), 0, time.Local)
	return local.Unix() * 1_000_000
}

// fitDims scales (w, h) to fit inside (maxW, maxH) preserving aspect ratio,
// so one dimension reaches its bound. Results are clamped to the bounds and
// rounded down to even values, which libx264 requires.
func fitDims(w, h, maxW, maxH int) (int, int) {
	rw := float64(maxW) / float64(w)
	rh := float64(maxH) / float64(h)
	r := math.Min(rw, rh)

	tw := even(int(math.Round(float64(w) * r)))
	th := even(int(math.Round(float64(h) * r)))
	if tw > maxW {
		tw = maxW
	}
	if th > maxH {
		th = maxH
	}
	if tw < 2 {
		tw = 2
	}
	if th < 2 {
		th = 2
	}
	return tw, th
}

func even(n int) int { return n - n%2 }
