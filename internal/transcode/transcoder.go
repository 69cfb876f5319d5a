// Package transcode produces downscaled previews of downloaded images by
// shelling out to an ImageMagick compatible resize command.
package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/spec-kit/line-menu-bot/pkg/util/errorutil"
)

const DefaultPreviewWidth = 240

// Runner starts an external process and reports its exit status.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (int, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args. A non-zero exit yields the exit code and an
// error carrying stderr; a process that cannot start yields -1.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return exitErr.ExitCode(), fmt.Errorf("%s: %s", name, msg)
		}
		return exitErr.ExitCode(), fmt.Errorf("%s: %w", name, err)
	}
	return -1, fmt.Errorf("start %s: %w", name, err)
}

// Transcoder writes bounded-width previews.
type Transcoder struct {
	runner  Runner
	command string
	width   int
	logger  *zap.Logger
}

// NewTranscoder builds a transcoder. Empty command defaults to "convert".
func NewTranscoder(runner Runner, command string, width int, logger *zap.Logger) *Transcoder {
	if runner == nil {
		runner = ExecRunner{}
	}
	if strings.TrimSpace(command) == "" {
		command = "convert"
	}
	if width <= 0 {
		width = DefaultPreviewWidth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcoder{runner: runner, command: command, width: width, logger: logger.Named("transcoder")}
}

// Preview resizes src into dst. Any failure is returned as a TRANSCODE_FAILED DomainError.
func (t *Transcoder) Preview(ctx context.Context, src, dst string) error {
	args := []string{"-resize", fmt.Sprintf("%dx", t.width), src, dst}
	code, err := t.runner.Run(ctx, t.command, args...)
	t.logger.Info("resize finished",
		zap.String("command", t.command),
		zap.Strings("args", args),
		zap.Int("exit_code", code),
	)
	if err != nil || code != 0 {
		return apperrors.NewTranscodeError(code, err)
	}
	return nil
}
