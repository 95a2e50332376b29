// Package ffmpeg constructs and runs the encoder invocation for one output
// partition: every clip is normalized to a common frame (scale + pad),
// optionally stamped with a date/time overlay, and the results are joined
// with the concat filter into a single re-encoded file.
//
// Build produces the full argument slice, Execute runs it with stderr
// capture, and ClassifyFailure turns well-known stderr patterns into short
// hints for the run summary.
package ffmpeg
