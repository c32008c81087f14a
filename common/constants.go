package common

import "time"

// Application metadata.
const (
	// AppName is the display name of the tool.
	AppName = "VPN Watchdog"
	// BinaryName is the installed command name.
	BinaryName = "vpn-watchdog"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "vpn-watchdog"
)

// File names used by the tool.
const (
	SettingsFileName = "config.yaml"
	LogFileName      = "vpn-watchdog.log"
)

// Defaults for the connectivity checks and the restart loop.
const (
	// DefaultRemoteHost is the host probed with ICMP when none is configured.
	DefaultRemoteHost = "4.2.2.2"
	// DefaultPingCount is the number of ICMP echoes sent per probe.
	// All of them must succeed for the probe to report healthy.
	DefaultPingCount = 5
	// DefaultClientPattern restricts process matching to the VPN client binary.
	DefaultClientPattern = "openvpn"
	// DefaultNetstartScript is the OS bring-up script for the tunnel interface.
	DefaultNetstartScript = "/etc/netstart"
	// DefaultGracePeriod is the fixed wait after SIGTERM before assuming
	// the client's teardown effects (routes, interface) are complete.
	DefaultGracePeriod = 5 * time.Second
	// DefaultSettleDelay is the fixed wait after launching the client
	// before the first probe.
	DefaultSettleDelay = 30 * time.Second
)
