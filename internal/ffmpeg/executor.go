package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/backmassage/clipstitch/internal/config"
)

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string
	Err    error
}

// Execute runs the prepared ffmpeg argument slice. At quiet verbosity stderr
// is captured silently for failure classification; otherwise it is tee'd to
// the terminal in real time so encode progress stays visible.
func Execute(ctx context.Context, cfg *config.Config, args []string) ExecResult {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	if cfg.Verbosity != "quiet" {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	return ExecResult{
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}
