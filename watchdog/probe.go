package watchdog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yllada/vpn-watchdog/common"
)

// Prober checks whether the host has working connectivity through the VPN:
// ICMP reachability of a remote host and, when a route prefix is
// configured, that the first hop toward that host matches the prefix.
type Prober struct {
	runner Runner

	// RemoteHost is the target of both the ICMP probe and the trace.
	RemoteHost string
	// RoutePrefix is the expected textual prefix of the first hop.
	// Empty disables the route check entirely.
	RoutePrefix string
	// PingCount echoes are sent; the probe is healthy only if the ping
	// utility reports overall success.
	PingCount int
}

// NewProber creates a prober with defaults filled in.
func NewProber(runner Runner, remoteHost, routePrefix string, pingCount int) *Prober {
	if remoteHost == "" {
		remoteHost = common.DefaultRemoteHost
	}
	if pingCount <= 0 {
		pingCount = common.DefaultPingCount
	}
	return &Prober{
		runner:      runner,
		RemoteHost:  remoteHost,
		RoutePrefix: routePrefix,
		PingCount:   pingCount,
	}
}

// Check runs the connectivity checks. The boolean is the health verdict;
// a non-nil error means a probe utility could not do its job at all, which
// is an environment problem rather than an unhealthy tunnel.
func (p *Prober) Check(ctx context.Context) (bool, error) {
	common.LogInfo("Checking internet connection")
	reachable, err := p.ping(ctx)
	if err != nil {
		return false, err
	}
	if !reachable {
		common.LogWarn("Remote host %s is not available through ICMP", p.RemoteHost)
		return false, nil
	}

	if p.RoutePrefix == "" {
		return true, nil
	}

	common.LogInfo("Checking default route")
	hop, err := p.FirstHop(ctx)
	if err != nil {
		return false, err
	}
	if !strings.HasPrefix(hop, p.RoutePrefix) {
		common.LogWarn("Route table has no expected default route %s (first hop %s)", p.RoutePrefix, hop)
		return false, nil
	}

	return true, nil
}

// ping sends PingCount ICMP echoes. The verdict is the utility's own exit
// status; partial loss that the utility reports as failure counts as
// unreachable.
func (p *Prober) ping(ctx context.Context) (bool, error) {
	out, err := p.runner.Output(ctx, "ping", "-c", strconv.Itoa(p.PingCount), p.RemoteHost)
	if len(out) > 0 {
		common.LogInfo("ping stdout:\n%s", strings.TrimSpace(string(out)))
	}
	if err == nil {
		return true, nil
	}

	if ese, ok := IsExitStatus(err); ok {
		if len(ese.Stderr) > 0 {
			common.LogInfo("ping stderr:\n%s", strings.TrimSpace(string(ese.Stderr)))
		}
		return false, nil
	}

	return false, fmt.Errorf("%w: %v", common.ErrProbeUnavailable, err)
}

// FirstHop returns the first hop on the path to the remote host, taken
// from a single-hop traceroute. The header line goes to the utility's
// stderr, so stdout's first row carries the hop address as its second
// field.
func (p *Prober) FirstHop(ctx context.Context) (string, error) {
	out, err := p.runner.Output(ctx, "traceroute", "-m", "1", p.RemoteHost)
	if err != nil {
		if _, ok := IsExitStatus(err); ok {
			return "", fmt.Errorf("traceroute to %s: %w", p.RemoteHost, err)
		}
		return "", fmt.Errorf("%w: %v", common.ErrProbeUnavailable, err)
	}

	fields := strings.Fields(string(out))
	if len(fields) < 2 {
		return "", fmt.Errorf("unexpected traceroute output: %q", strings.TrimSpace(string(out)))
	}
	return fields[1], nil
}
