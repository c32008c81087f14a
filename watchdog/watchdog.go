package watchdog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yllada/vpn-watchdog/common"
)

// State represents where the control loop currently stands.
type State int

const (
	// StateNoClient indicates no VPN client process was found.
	StateNoClient State = iota
	// StateUnverified indicates a client is running but not yet probed.
	StateUnverified
	// StateHealthy indicates connectivity checks passed; terminal.
	StateHealthy
	// StateUnhealthy indicates checks failed and a restart is due.
	StateUnhealthy
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateNoClient:
		return "No client"
	case StateUnverified:
		return "Client running"
	case StateHealthy:
		return "Healthy"
	case StateUnhealthy:
		return "Unhealthy"
	default:
		return "Unknown"
	}
}

// Event describes a state transition of the control loop. Events feed the
// optional live status view and are purely informational.
type Event struct {
	State    State
	PID      int
	Restarts int
	Message  string
}

// Options holds everything the control loop needs. Defaults are restated
// here as explicit fields rather than process-wide state so multiple
// watchdogs with different targets can coexist under test.
type Options struct {
	// Search is the substring matched against client command lines,
	// normally the config file's base name.
	Search string
	// Interface is the tunnel interface from the config's dev directive.
	Interface string
	// RemoteHost is the ICMP probe target.
	RemoteHost string
	// RoutePrefix enables first-hop verification when non-empty.
	RoutePrefix string
	// PingCount echoes per probe.
	PingCount int
	// SettleDelay is the wait after a launch before the first probe.
	SettleDelay time.Duration
	// GracePeriod is the wait after SIGTERM before cleaning routes.
	GracePeriod time.Duration
	// MaxRestarts bounds restart attempts; 0 means run until healthy.
	MaxRestarts int
	// ClientPattern restricts process matching to the client binary.
	ClientPattern string
	// NetstartScript is the interface bring-up script.
	NetstartScript string
	// Notify, when set, receives every state transition.
	Notify func(Event)
}

// Watchdog drives the locate/launch/probe/restart loop until the VPN
// connection is healthy or a hard error occurs.
type Watchdog struct {
	opts     Options
	prober   *Prober
	routes   *RouteTable
	procs    *ProcessTable
	launcher *Launcher
	restarts int
}

// New creates a watchdog that drives the real OS utilities.
func New(opts Options) *Watchdog {
	return newWithRunner(opts, NewRunner())
}

// newWithRunner wires the components around an injected Runner.
func newWithRunner(opts Options, runner Runner) *Watchdog {
	routes := NewRouteTable(runner)
	return &Watchdog{
		opts:     opts,
		prober:   NewProber(runner, opts.RemoteHost, opts.RoutePrefix, opts.PingCount),
		routes:   routes,
		procs:    NewProcessTable(runner, opts.ClientPattern, opts.GracePeriod),
		launcher: NewLauncher(runner, routes, opts.NetstartScript),
	}
}

// Restarts returns how many teardown/relaunch cycles have run.
func (w *Watchdog) Restarts() int {
	return w.restarts
}

func (w *Watchdog) notify(state State, pid int, message string) {
	if w.opts.Notify != nil {
		w.opts.Notify(Event{
			State:    state,
			PID:      pid,
			Restarts: w.restarts,
			Message:  message,
		})
	}
}

// Run executes the control loop. It returns nil once the connection is
// healthy, ErrLaunchFailed if the client cannot be brought up,
// ErrRestartLimit if the configured ceiling is exceeded, and any probe
// environment error as-is.
func (w *Watchdog) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pid, err := w.procs.Find(ctx, w.opts.Search)
		if err != nil && !errors.Is(err, common.ErrProcessNotFound) {
			return err
		}

		if pid == 0 {
			common.LogWarn("VPN client %s is not running", w.opts.Search)
			w.notify(StateNoClient, 0, "launching client")

			if err := w.launcher.Launch(ctx, w.opts.Interface); err != nil {
				common.LogError("Failed to start VPN client %s", w.opts.Search)
				return err
			}

			// TODO: watch the client log for readiness instead of a fixed delay
			common.LogInfo("Wait some time before client starts")
			if err := sleepContext(ctx, w.opts.SettleDelay); err != nil {
				return err
			}

			// Re-locate so an unhealthy first probe has a pid to terminate.
			pid, err = w.procs.Find(ctx, w.opts.Search)
			if err != nil && !errors.Is(err, common.ErrProcessNotFound) {
				return err
			}
		}

		common.LogWarn("VPN client %s is running", w.opts.Search)
		w.notify(StateUnverified, pid, "probing connectivity")

		healthy, err := w.prober.Check(ctx)
		if err != nil {
			return err
		}

		if healthy {
			common.LogWarn("VPN connection %s is ok", w.opts.Search)
			w.notify(StateHealthy, pid, "connection verified")
			return nil
		}

		common.LogWarn("VPN connection %s is unstable, need to restart", w.opts.Search)
		w.notify(StateUnhealthy, pid, "restarting client")

		if w.opts.MaxRestarts > 0 && w.restarts >= w.opts.MaxRestarts {
			return fmt.Errorf("%w: %d attempts", common.ErrRestartLimit, w.restarts)
		}
		w.restarts++

		if pid != 0 {
			if err := w.procs.Terminate(ctx, pid); err != nil {
				return err
			}
		}
		if err := w.routes.Flush(ctx, w.opts.Interface); err != nil {
			return err
		}
	}
}

// sleepContext blocks for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
