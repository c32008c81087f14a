package watchdog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/yllada/vpn-watchdog/common"
)

// Runner abstracts "run an external command and capture its output" so the
// watchdog components can be exercised against scripted fixtures instead of
// the real OS utilities.
type Runner interface {
	// Output runs the command and returns its standard output. A command
	// that ran but exited non-zero yields an *ExitStatusError; any other
	// error means the command could not be run at all.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Run runs the command and waits for it to finish, discarding output
	// except for debug logging. Error semantics match Output.
	Run(ctx context.Context, name string, args ...string) error
}

// ExitStatusError reports a command that was invoked successfully but
// exited with a non-zero status. It is distinct from invocation failures
// (missing binary, permission), which surface as other error types.
type ExitStatusError struct {
	Cmd    string
	Code   int
	Stderr []byte
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Cmd, e.Code)
}

// IsExitStatus reports whether err represents a non-zero exit, returning
// the typed error when it does.
func IsExitStatus(err error) (*ExitStatusError, bool) {
	var ese *ExitStatusError
	if errors.As(err, &ese) {
		return ese, true
	}
	return nil, false
}

// execRunner is the production Runner backed by os/exec.
type execRunner struct{}

// NewRunner returns a Runner that invokes real OS commands.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	common.LogDebug("exec: %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, &ExitStatusError{Cmd: name, Code: exitErr.ExitCode(), Stderr: exitErr.Stderr}
		}
		return out, fmt.Errorf("exec %s: %w", name, err)
	}
	return out, nil
}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	common.LogDebug("exec: %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	err := cmd.Run()
	if combined.Len() > 0 {
		common.LogDebug("%s output:\n%s", name, strings.TrimSpace(combined.String()))
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitStatusError{Cmd: name, Code: exitErr.ExitCode(), Stderr: combined.Bytes()}
		}
		return fmt.Errorf("exec %s: %w", name, err)
	}
	return nil
}
