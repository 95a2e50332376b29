package ffmpeg

import (
	"strings"

	"github.com/backmassage/clipstitch/internal/config"
	"github.com/backmassage/clipstitch/internal/planner"
)

// Build constructs the complete ffmpeg argument slice that concatenates one
// partition into stagingPath. The caller renames the staging file into place
// after a successful run so a failed encode never leaves a partial output at
// the destination.
func Build(cfg *config.Config, target *planner.OutputTarget, stagingPath string) []string {
	args := make([]string, 0, 16+2*len(target.Clips))

	// --- Preamble ---
	args = append(args, "ffmpeg", "-hide_banner", "-nostdin", "-y")
	args = append(args, "-loglevel", cfg.Verbosity, "-stats")

	// --- Inputs, one per clip in partition order ---
	for _, clip := range target.Clips {
		args = append(args, "-i", clip.Path)
	}

	// --- Normalize + overlay + concat ---
	args = append(args, "-filter_complex", FilterGraph(cfg, target.Clips))
	args = append(args, "-map", "[v]", "-map", "[a]")

	// --- Codecs (widely compatible defaults: libx264 + aac) ---
	args = append(args, "-c:v", cfg.VideoCodec, "-c:a", cfg.AudioCodec)

	// --- Container opts ---
	args = append(args, "-movflags", "+faststart")

	// --- Output ---
	args = append(args, stagingPath)

	return args
}

// CommandString renders an argument slice as a copy-pasteable shell command
// for --debug-cmd output.
func CommandString(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

// shellQuote single-quotes an argument when it contains characters a POSIX
// shell would interpret.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$&;()[]{}<>|*?~#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
