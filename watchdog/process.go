package watchdog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/yllada/vpn-watchdog/common"
)

// ProcessTable locates and terminates the VPN client process by scanning
// the system process listing.
type ProcessTable struct {
	runner Runner

	// ClientPattern restricts candidate lines to the expected client binary
	// before the search string is applied.
	ClientPattern string
	// GracePeriod is the fixed wait after SIGTERM, applied whether or not
	// the process was still alive, so teardown effects can complete.
	GracePeriod time.Duration
}

// NewProcessTable creates a process table helper with defaults filled in.
func NewProcessTable(runner Runner, clientPattern string, gracePeriod time.Duration) *ProcessTable {
	if clientPattern == "" {
		clientPattern = common.DefaultClientPattern
	}
	return &ProcessTable{
		runner:        runner,
		ClientPattern: clientPattern,
		GracePeriod:   gracePeriod,
	}
}

// Find returns the pid of the first process whose command line contains
// search (case-insensitive), considering only lines that mention the
// client pattern. Returns ErrProcessNotFound when nothing matches.
func (pt *ProcessTable) Find(ctx context.Context, search string) (int, error) {
	common.LogInfo("Searching process by string: %s", search)

	out, err := pt.runner.Output(ctx, "ps", "-A", "-o", "pid,command")
	if err != nil {
		if _, ok := IsExitStatus(err); ok {
			return 0, fmt.Errorf("ps: %w", err)
		}
		return 0, fmt.Errorf("%w: %v", common.ErrProbeUnavailable, err)
	}

	needle := strings.ToLower(search)
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, pt.ClientPattern) {
			continue
		}
		pidField, cmd, found := strings.Cut(strings.TrimSpace(line), " ")
		if !found {
			continue
		}
		if !strings.Contains(strings.ToLower(cmd), needle) {
			continue
		}
		pid, err := strconv.Atoi(pidField)
		if err != nil {
			continue
		}
		common.LogInfo("Process found: %s", strings.TrimSpace(line))
		return pid, nil
	}

	common.LogInfo("No processes are found: %s", search)
	return 0, common.ErrProcessNotFound
}

// Terminate sends SIGTERM to pid and waits the grace period. A process
// that is already gone counts as success; the grace period is applied
// regardless so route teardown has settled before the caller proceeds.
func (pt *ProcessTable) Terminate(ctx context.Context, pid int) error {
	common.LogWarn("Killing VPN client process %d", pid)

	proc, err := os.FindProcess(pid)
	if err == nil {
		err = proc.Signal(syscall.SIGTERM)
	}
	if err != nil && !errors.Is(err, os.ErrProcessDone) && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}

	if err := sleepContext(ctx, pt.GracePeriod); err != nil {
		return err
	}

	common.LogWarn("VPN client process %d is killed", pid)
	return nil
}
