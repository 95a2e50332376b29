// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation (CheckDeps) for ffmpeg, ffprobe, and the encoders
// and filters a merge needs.
package check

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/backmassage/clipstitch/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrEncodeFailed    = errors.New("video test encode failed")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RunCheck runs the --check flow: prints availability of ffmpeg, ffprobe,
// the configured video and audio encoders, and the drawtext filter used
// for the timestamp overlay. Informational only; it does not stop on
// failure.
func RunCheck(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	checkTool(log, "ffmpeg")
	checkTool(log, "ffprobe")
	checkVideoEncoder(cfg, log)
	checkAudioEncoder(cfg, log)
	checkDrawtext(log)
}

// checkTool verifies the tool is on PATH and logs its version string.
func checkTool(log Logger, name string) {
	if _, err := exec.LookPath(name); err != nil {
		log.Error("%s not found", name)
		return
	}
	out, err := exec.Command(name, "-version").Output()
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s: %s", name, firstLine)
}

func checkVideoEncoder(cfg *config.Config, log Logger) {
	log.Info("Testing video encoder %s...", cfg.VideoCodec)
	if runSilent("ffmpeg", videoTestArgs(cfg.VideoCodec)...) {
		log.Success("%s works", cfg.VideoCodec)
	} else {
		log.Error("%s test encode failed", cfg.VideoCodec)
	}
}

func checkAudioEncoder(cfg *config.Config, log Logger) {
	log.Info("Testing audio encoder %s...", cfg.AudioCodec)
	if runSilent("ffmpeg",
		"-hide_banner", "-nostdin",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:a", cfg.AudioCodec, "-f", "null", "-",
	) {
		log.Success("%s works", cfg.AudioCodec)
	} else {
		log.Error("%s test encode failed", cfg.AudioCodec)
	}
}

// checkDrawtext verifies ffmpeg was built with the drawtext filter
// (libfreetype), which the timestamp overlay depends on.
func checkDrawtext(log Logger) {
	log.Info("Testing drawtext filter (timestamp overlay)...")
	if runSilent("ffmpeg",
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-vf", "drawtext=text=check",
		"-f", "null", "-",
	) {
		log.Success("drawtext works")
	} else {
		log.Error("drawtext unavailable; run with --no-date or install an ffmpeg build with libfreetype")
	}
}

// CheckDeps is the pre-run validation: it verifies that ffmpeg and ffprobe
// are on PATH and that the configured video encoder actually works.
// Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return ErrFfprobeNotFound
	}
	if !runSilent("ffmpeg", videoTestArgs(cfg.VideoCodec)...) {
		return ErrEncodeFailed
	}
	return nil
}

// videoTestArgs returns the ffmpeg arguments for a minimal test encode with
// the given codec. Shared by checkVideoEncoder and CheckDeps.
func videoTestArgs(codec string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", codec,
		"-f", "null", "-",
	}
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
