package watchdog

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"
)

// fakeResult is one scripted response for a command name.
type fakeResult struct {
	out string
	err error
}

// fakeRunner replays scripted outputs instead of invoking OS utilities.
// Results for a command name are consumed in order; the last one repeats.
// Run results are keyed by the full command line.
type fakeRunner struct {
	outputs map[string][]fakeResult
	runErr  map[string]error
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: make(map[string][]fakeResult),
		runErr:  make(map[string]error),
	}
}

func (f *fakeRunner) script(name string, results ...fakeResult) {
	f.outputs[name] = append(f.outputs[name], results...)
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))

	queue, ok := f.outputs[name]
	if !ok || len(queue) == 0 {
		return nil, fmt.Errorf("exec %s: %w", name, exec.ErrNotFound)
	}
	r := queue[0]
	if len(queue) > 1 {
		f.outputs[name] = queue[1:]
	}
	return []byte(r.out), r.err
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	call := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, call)
	return f.runErr[call]
}

// callsTo returns the recorded invocations of the given command.
func (f *fakeRunner) callsTo(name string) []string {
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, name+" ") || c == name {
			out = append(out, c)
		}
	}
	return out
}

func TestExitStatusError_Error(t *testing.T) {
	err := &ExitStatusError{Cmd: "ping", Code: 2}
	if got := err.Error(); got != "ping exited with status 2" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsExitStatus(t *testing.T) {
	wrapped := fmt.Errorf("traceroute: %w", &ExitStatusError{Cmd: "traceroute", Code: 1})

	ese, ok := IsExitStatus(wrapped)
	if !ok {
		t.Fatal("IsExitStatus should unwrap a wrapped *ExitStatusError")
	}
	if ese.Code != 1 {
		t.Errorf("Code = %d, want 1", ese.Code)
	}

	if _, ok := IsExitStatus(errors.New("plain")); ok {
		t.Error("IsExitStatus should reject unrelated errors")
	}
	if _, ok := IsExitStatus(nil); ok {
		t.Error("IsExitStatus should reject nil")
	}
}

func TestExecRunner_Output(t *testing.T) {
	runner := NewRunner()

	out, err := runner.Output(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if strings.TrimSpace(string(out)) != "hello" {
		t.Errorf("Output() = %q, want hello", out)
	}
}

func TestExecRunner_ExitStatus(t *testing.T) {
	runner := NewRunner()

	err := runner.Run(context.Background(), "false")
	if err == nil {
		t.Fatal("Run(false) should fail")
	}
	if _, ok := IsExitStatus(err); !ok {
		t.Errorf("Run(false) error = %v, want *ExitStatusError", err)
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	runner := NewRunner()

	_, err := runner.Output(context.Background(), "definitely-not-a-command-xyz")
	if err == nil {
		t.Fatal("Output() should fail for a missing binary")
	}
	if _, ok := IsExitStatus(err); ok {
		t.Error("a missing binary must not look like a non-zero exit")
	}
}
