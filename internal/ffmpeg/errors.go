package ffmpeg

import "regexp"

// Pre-compiled regexes for classifying ffmpeg stderr output into failure
// hints for the run summary. Checked in order; the first match wins.
var (
	reNoAudioStream = regexp.MustCompile(
		`(?i)Stream specifier .* matches no streams|` +
			`matches no streams|` +
			`Cannot find a matching stream`)

	reFontIssue = regexp.MustCompile(
		`(?i)Cannot find a valid font|` +
			`fontselect: .* not found|` +
			`impossible to init fontconfig|` +
			`Could not load font`)

	reMissingInput = regexp.MustCompile(
		`(?i)No such file or directory`)

	reBadInput = regexp.MustCompile(
		`(?i)Invalid data found when processing input|` +
			`does not contain any stream|` +
			`moov atom not found`)
)

// ClassifyFailure maps well-known ffmpeg stderr patterns to a short hint for
// the per-partition failure report. Returns "" when the output matches no
// known pattern.
func ClassifyFailure(stderr string) string {
	switch {
	case reNoAudioStream.MatchString(stderr):
		return "a clip has no audio stream; the concat filter needs audio in every input"
	case reFontIssue.MatchString(stderr):
		return "drawtext could not load a font; install fontconfig or disable the overlay with --no-date"
	case reMissingInput.MatchString(stderr):
		return "an input clip vanished between discovery and encoding"
	case reBadInput.MatchString(stderr):
		return "a clip could not be decoded (possibly corrupt or truncated)"
	default:
		return ""
	}
}
