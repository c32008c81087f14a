// Package watchdog implements the VPN supervision loop.
//
// The package is organized around small helpers that each drive one OS
// utility through the Runner abstraction:
//
//   - Prober: ICMP reachability and first-hop route verification
//   - RouteTable: routing-table inspection and best-effort cleanup
//   - ProcessTable: client process lookup and termination
//   - Launcher: interface bring-up via the OS netstart script
//
// Watchdog ties them together as a state machine: locate the client,
// launch it if absent, probe connectivity, and tear down / relaunch until
// the connection is healthy.
//
// # External tools
//
// Everything the package knows about the system comes from the text output
// and exit codes of ping, traceroute, netstat, route, ps, and the bring-up
// script. The Runner interface isolates that dependency so the loop can be
// tested against scripted fixtures.
//
// # Error semantics
//
// Expected steady-state conditions (client absent, connection unhealthy)
// are not errors; they drive the loop. A utility that cannot be invoked at
// all surfaces as common.ErrProbeUnavailable, a failed bring-up as
// common.ErrLaunchFailed, and an exhausted restart ceiling as
// common.ErrRestartLimit.
package watchdog
