package watchdog

import (
	"context"
	"fmt"

	"github.com/yllada/vpn-watchdog/common"
)

// Launcher brings up the VPN interface through the OS bring-up script,
// clearing stale routes first so the fresh client starts from a clean
// table.
type Launcher struct {
	runner Runner
	routes *RouteTable

	// Script is the bring-up script invoked as `sh <script> <iface>`.
	Script string
}

// NewLauncher creates a launcher with defaults filled in.
func NewLauncher(runner Runner, routes *RouteTable, script string) *Launcher {
	if script == "" {
		script = common.DefaultNetstartScript
	}
	return &Launcher{
		runner: runner,
		routes: routes,
		Script: script,
	}
}

// Launch clears the interface's routes and runs the bring-up script.
// A route flush failure aborts the launch; a non-zero script exit is
// reported as ErrLaunchFailed.
func (l *Launcher) Launch(ctx context.Context, iface string) error {
	common.LogInfo("Removing %s routes before starting VPN client", iface)
	if err := l.routes.Flush(ctx, iface); err != nil {
		return err
	}

	common.LogWarn("Bringing up VPN interface %s", iface)
	if err := l.runner.Run(ctx, "sh", l.Script, iface); err != nil {
		common.LogError("Failed to bring up VPN interface %s", iface)
		return fmt.Errorf("%w: %s: %v", common.ErrLaunchFailed, iface, err)
	}

	return nil
}
