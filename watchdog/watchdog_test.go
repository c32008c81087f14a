package watchdog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yllada/vpn-watchdog/common"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateNoClient, "No client"},
		{StateUnverified, "Client running"},
		{StateHealthy, "Healthy"},
		{StateUnhealthy, "Unhealthy"},
		{State(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

// psWithClient builds a process listing containing a client entry with the
// given pid. The pid comes from an already-exited process so termination in
// loop tests signals nothing that is still alive.
func psWithClient(pid int) string {
	return fmt.Sprintf("  PID COMMAND\n    1 /sbin/init\n%5d /usr/sbin/openvpn --config /etc/openvpn/home.ovpn\n", pid)
}

const psNoClient = "  PID COMMAND\n    1 /sbin/init\n"

func testOptions(events *[]Event) Options {
	return Options{
		Search:         "home.ovpn",
		Interface:      "tun0",
		RemoteHost:     "4.2.2.2",
		PingCount:      5,
		GracePeriod:    time.Millisecond,
		NetstartScript: "/etc/netstart",
		Notify: func(e Event) {
			*events = append(*events, e)
		},
	}
}

func states(events []Event) []State {
	out := make([]State, len(events))
	for i, e := range events {
		out[i] = e.State
	}
	return out
}

func assertStates(t *testing.T, events []Event, want ...State) {
	t.Helper()
	got := states(events)
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("states = %v, want %v", got, want)
		}
	}
}

func TestWatchdog_HealthyImmediately(t *testing.T) {
	runner := newFakeRunner()
	runner.script("ps", fakeResult{out: psWithClient(exitedPID(t))})
	runner.script("ping", fakeResult{out: "5 received"})

	var events []Event
	w := newWithRunner(testOptions(&events), runner)

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if w.Restarts() != 0 {
		t.Errorf("Restarts() = %d, want 0", w.Restarts())
	}
	assertStates(t, events, StateUnverified, StateHealthy)
	if got := runner.callsTo("sh"); len(got) != 0 {
		t.Errorf("bring-up script ran for an already-running client: %v", got)
	}
}

func TestWatchdog_LaunchesWhenClientAbsent(t *testing.T) {
	pid := exitedPID(t)
	runner := newFakeRunner()
	runner.script("ps",
		fakeResult{out: psNoClient},
		fakeResult{out: psWithClient(pid)},
	)
	runner.script("netstat", fakeResult{out: "no tunnel routes"})
	runner.script("ping", fakeResult{out: "5 received"})

	var events []Event
	w := newWithRunner(testOptions(&events), runner)

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	assertStates(t, events, StateNoClient, StateUnverified, StateHealthy)
	if got := runner.callsTo("sh"); len(got) != 1 || got[0] != "sh /etc/netstart tun0" {
		t.Errorf("sh calls = %v", got)
	}
	if events[2].PID != pid {
		t.Errorf("healthy event PID = %d, want %d", events[2].PID, pid)
	}
}

func TestWatchdog_LaunchFailureIsFatal(t *testing.T) {
	runner := newFakeRunner()
	runner.script("ps", fakeResult{out: psNoClient})
	runner.script("netstat", fakeResult{out: ""})
	runner.runErr["sh /etc/netstart tun0"] = &ExitStatusError{Cmd: "sh", Code: 127}

	var events []Event
	w := newWithRunner(testOptions(&events), runner)

	err := w.Run(context.Background())
	if !errors.Is(err, common.ErrLaunchFailed) {
		t.Fatalf("Run() error = %v, want ErrLaunchFailed", err)
	}
	assertStates(t, events, StateNoClient)
}

func TestWatchdog_RestartsUnhealthyClient(t *testing.T) {
	runner := newFakeRunner()
	runner.script("ps", fakeResult{out: psWithClient(exitedPID(t))})
	runner.script("ping",
		fakeResult{out: "0 received", err: &ExitStatusError{Cmd: "ping", Code: 1}},
		fakeResult{out: "5 received"},
	)
	runner.script("netstat", fakeResult{out: netstatOut})

	var events []Event
	w := newWithRunner(testOptions(&events), runner)

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if w.Restarts() != 1 {
		t.Errorf("Restarts() = %d, want 1", w.Restarts())
	}
	assertStates(t, events,
		StateUnverified, StateUnhealthy,
		StateUnverified, StateHealthy,
	)
	if got := runner.callsTo("route"); len(got) != 2 {
		t.Errorf("route calls = %v, want the stale tunnel routes removed", got)
	}
}

func TestWatchdog_RestartLimit(t *testing.T) {
	runner := newFakeRunner()
	runner.script("ps", fakeResult{out: psWithClient(exitedPID(t))})
	runner.script("ping", fakeResult{err: &ExitStatusError{Cmd: "ping", Code: 1}})
	runner.script("netstat", fakeResult{out: ""})

	var events []Event
	opts := testOptions(&events)
	opts.MaxRestarts = 2
	w := newWithRunner(opts, runner)

	err := w.Run(context.Background())
	if !errors.Is(err, common.ErrRestartLimit) {
		t.Fatalf("Run() error = %v, want ErrRestartLimit", err)
	}
	if w.Restarts() != 2 {
		t.Errorf("Restarts() = %d, want 2", w.Restarts())
	}
}

func TestWatchdog_ProbeEnvironmentErrorIsFatal(t *testing.T) {
	runner := newFakeRunner()
	runner.script("ps", fakeResult{out: psWithClient(exitedPID(t))})
	// no ping scripted: the utility is unavailable

	var events []Event
	w := newWithRunner(testOptions(&events), runner)

	err := w.Run(context.Background())
	if !errors.Is(err, common.ErrProbeUnavailable) {
		t.Fatalf("Run() error = %v, want ErrProbeUnavailable", err)
	}
}

func TestWatchdog_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var events []Event
	w := newWithRunner(testOptions(&events), newFakeRunner())

	if err := w.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(events) != 0 {
		t.Errorf("events = %v, want none after cancellation", events)
	}
}

func TestSleepContext(t *testing.T) {
	if err := sleepContext(context.Background(), 0); err != nil {
		t.Errorf("sleepContext(0) error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepContext() error = %v, want context.Canceled", err)
	}
}
