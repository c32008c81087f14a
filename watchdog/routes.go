package watchdog

import (
	"context"
	"fmt"
	"strings"

	"github.com/yllada/vpn-watchdog/common"
)

// Route is a routing-table entry discovered for a tunnel interface.
// Destination is the first whitespace-separated field of the table line.
type Route struct {
	Destination string
	Line        string
}

// RouteTable inspects and cleans the system routing table for a given
// interface by driving the netstat and route utilities.
type RouteTable struct {
	runner Runner
}

// NewRouteTable creates a route table helper.
func NewRouteTable(runner Runner) *RouteTable {
	return &RouteTable{runner: runner}
}

// List returns the routes whose table line mentions iface.
func (rt *RouteTable) List(ctx context.Context, iface string) ([]Route, error) {
	common.LogInfo("Fetching route table")
	out, err := rt.runner.Output(ctx, "netstat", "-rn", "-finet")
	if err != nil {
		if _, ok := IsExitStatus(err); ok {
			return nil, fmt.Errorf("netstat: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrProbeUnavailable, err)
	}

	var routes []Route
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, iface) {
			continue
		}
		common.LogDebug("Processing route line: %s", line)
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		routes = append(routes, Route{Destination: fields[0], Line: line})
	}
	return routes, nil
}

// Flush removes every route associated with iface. Individual delete
// failures are logged and skipped; only a failure to read the table at all
// is returned as an error.
func (rt *RouteTable) Flush(ctx context.Context, iface string) error {
	routes, err := rt.List(ctx, iface)
	if err != nil {
		return err
	}

	for _, route := range routes {
		common.LogWarn("Removing route %s for iface %s", route.Destination, iface)
		if err := rt.runner.Run(ctx, "route", "delete", route.Destination); err != nil {
			common.LogError("Failed to remove route %s for iface %s: %v", route.Destination, iface, err)
		}
	}

	return nil
}
