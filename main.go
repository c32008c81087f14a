// Package main provides the entry point for the VPN watchdog.
// The watchdog supervises an OpenVPN client described by an .ovpn file:
// it locates the client process, launches it through the OS bring-up
// script when absent, verifies connectivity with ICMP and an optional
// first-hop route check, and tears the client down and relaunches it
// until the connection is healthy.
//
// Usage:
//
//	vpn-watchdog [options] OVPN_FILE
//
// Environment:
//
//	The tool drives the ping, traceroute, netstat, route and ps
//	utilities and must run with enough privilege to signal the VPN
//	client and delete routes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/docopt/docopt-go"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/yllada/vpn-watchdog/common"
	"github.com/yllada/vpn-watchdog/config"
	"github.com/yllada/vpn-watchdog/ovpn"
	"github.com/yllada/vpn-watchdog/tui"
	"github.com/yllada/vpn-watchdog/watchdog"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

const usage = `VPN Watchdog - keeps an OpenVPN tunnel alive

Usage:
  vpn-watchdog [options] OVPN_FILE

Arguments:
  OVPN_FILE  OpenVPN client configuration; its dev directive names the
             tunnel interface and its base name identifies the process

Options:
  -v --verbose                Info-level logging
  -d --debug                  Debug-level logging, implies --verbose
  -r --remote-host=<host>     ICMP probe target (default 4.2.2.2)
  -p --route-prefix=<prefix>  Require the first hop toward the probe host
                              to start with this prefix
  --settings=<path>           Settings file (default ~/.config/vpn-watchdog/config.yaml)
  --max-restarts=<n>          Give up after this many restarts, 0 keeps trying
  --tui                       Live status view (needs a terminal)
  -h --help                   Show this help message
  --version                   Show version and exit
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := docopt.ParseArgs(usage, args, versionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	ovpnFile, _ := opts.String("OVPN_FILE")

	settingsPath, _ := opts.String("--settings")
	settings, err := config.Load(settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Flags override the settings file when given.
	if host, err := opts.String("--remote-host"); err == nil && host != "" {
		settings.RemoteHost = host
	}
	if prefix, err := opts.String("--route-prefix"); err == nil && prefix != "" {
		settings.RoutePrefix = prefix
	}
	if n, err := opts.Int("--max-restarts"); err == nil {
		settings.MaxRestarts = n
	}

	logLevel := common.LevelWarn
	if v, _ := opts.Bool("--verbose"); v {
		logLevel = common.LevelInfo
	}
	if d, _ := opts.Bool("--debug"); d {
		logLevel = common.LevelDebug
	}

	if err := common.InitLogger(common.LogConfig{
		Level:      logLevel,
		EnableFile: settings.FileLogging,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	sessionID := uuid.NewString()
	common.LogInfo("Starting %s v%s session %s", common.AppName, appVersion, sessionID)

	cfg, err := ovpn.Parse(ovpnFile)
	if err != nil {
		common.LogError("Cannot read client configuration %s: %v", ovpnFile, err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return errnoExitCode(err)
	}

	iface, err := cfg.Dev()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	search := filepath.Base(ovpnFile)

	if err := checkTools(settings.RoutePrefix != ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	started := time.Now()

	wdOpts := watchdog.Options{
		Search:         search,
		Interface:      iface,
		RemoteHost:     settings.RemoteHost,
		RoutePrefix:    settings.RoutePrefix,
		PingCount:      settings.PingCount,
		SettleDelay:    settings.SettleDelay(),
		GracePeriod:    settings.GracePeriod(),
		MaxRestarts:    settings.MaxRestarts,
		ClientPattern:  settings.ClientPattern,
		NetstartScript: settings.NetstartScript,
	}

	var runErr error
	var restarts int

	useTUI, _ := opts.Bool("--tui")
	if useTUI && term.IsTerminal(int(os.Stdout.Fd())) {
		restarts, runErr = runWithTUI(ctx, cancel, wdOpts)
	} else {
		if useTUI {
			common.LogWarn("Standard output is not a terminal, running without status view")
		}
		wd := watchdog.New(wdOpts)
		runErr = wd.Run(ctx)
		restarts = wd.Restarts()
	}

	printSummary(search, iface, restarts, time.Since(started), runErr)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	return 0
}

// runWithTUI runs the watchdog behind a live status view. The watchdog
// owns the outcome; the view only mirrors its events.
func runWithTUI(ctx context.Context, cancel context.CancelFunc, wdOpts watchdog.Options) (int, error) {
	program := tea.NewProgram(tui.NewModel(wdOpts.Search, wdOpts.Interface, wdOpts.RemoteHost))

	wdOpts.Notify = func(e watchdog.Event) {
		program.Send(tui.EventMsg(e))
	}
	wd := watchdog.New(wdOpts)

	done := make(chan error, 1)
	go func() {
		err := wd.Run(ctx)
		done <- err
		program.Send(tui.DoneMsg{Err: err})
	}()

	final, err := program.Run()
	if err != nil {
		common.LogError("Status view failed: %v", err)
	}

	if m, ok := final.(tui.Model); ok && m.Done() {
		return wd.Restarts(), m.Err()
	}

	// The user quit the view; stop the loop and wait for it.
	cancel()
	runErr := <-done
	return wd.Restarts(), runErr
}

// printSummary writes a final one-line report of the run.
func printSummary(search, iface string, restarts int, elapsed time.Duration, runErr error) {
	result := "healthy"
	if runErr != nil {
		result = "failed"
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLIENT\tINTERFACE\tRESTARTS\tELAPSED\tRESULT")
	fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
		search, iface, restarts, elapsed.Round(time.Second), result)
	w.Flush()
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
// When a signal is received, it cancels the context to allow cleanup.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()
}

// checkTools verifies that the OS utilities the loop drives are present.
func checkTools(needTraceroute bool) error {
	tools := []string{"ping", "netstat", "route", "ps", "sh"}
	if needTraceroute {
		tools = append(tools, "traceroute")
	}

	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("required utility %s is not installed", tool)
		}
	}
	return nil
}

// errnoExitCode maps a file access error to the OS errno, so a missing
// configuration exits with ENOENT rather than a generic failure.
func errnoExitCode(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 1
}

func versionString() string {
	v := fmt.Sprintf("%s v%s", common.AppName, appVersion)
	if buildTime != "unknown" {
		v = fmt.Sprintf("%s (built %s, commit %s)", v, buildTime, commitSHA)
	}
	return v
}
