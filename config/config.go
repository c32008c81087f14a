// Package config provides settings management for the VPN watchdog.
// It handles loading, saving, and validating the optional settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yllada/vpn-watchdog/common"
)

// Settings represents the watchdog configuration.
// All fields are optional; command-line flags override file values.
// Delays are expressed in whole seconds to keep the file operator-friendly.
type Settings struct {
	// RemoteHost is the host probed with ICMP.
	RemoteHost string `yaml:"remote_host"`
	// RoutePrefix is the expected first-hop prefix; empty disables the check.
	RoutePrefix string `yaml:"route_prefix"`
	// PingCount is the number of ICMP echoes sent per probe.
	PingCount int `yaml:"ping_count"`
	// SettleDelaySeconds is the wait after launching the client before probing.
	SettleDelaySeconds int `yaml:"settle_delay"`
	// GracePeriodSeconds is the wait after SIGTERM before touching routes.
	GracePeriodSeconds int `yaml:"grace_period"`
	// MaxRestarts bounds the restart loop; 0 means unlimited.
	MaxRestarts int `yaml:"max_restarts"`
	// ClientPattern restricts process matching to the VPN client binary.
	ClientPattern string `yaml:"client_pattern"`
	// NetstartScript is the OS bring-up script invoked with the interface name.
	NetstartScript string `yaml:"netstart_script"`
	// FileLogging mirrors log lines into the rotating log file.
	FileLogging bool `yaml:"file_logging"`
}

// DefaultSettings returns the default configuration.
func DefaultSettings() *Settings {
	return &Settings{
		RemoteHost:         common.DefaultRemoteHost,
		RoutePrefix:        "",
		PingCount:          common.DefaultPingCount,
		SettleDelaySeconds: int(common.DefaultSettleDelay / time.Second),
		GracePeriodSeconds: int(common.DefaultGracePeriod / time.Second),
		MaxRestarts:        0,
		ClientPattern:      common.DefaultClientPattern,
		NetstartScript:     common.DefaultNetstartScript,
		FileLogging:        false,
	}
}

// Load loads settings from path. An empty path means the default location
// (~/.config/vpn-watchdog/config.yaml); if that file does not exist the
// defaults are returned. An explicitly given path must exist.
func Load(path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		configDir, err := common.GetConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(configDir, common.SettingsFileName)
	}

	if !common.FileExists(path) {
		if explicit {
			return nil, fmt.Errorf("settings file not found: %s", path)
		}
		return DefaultSettings(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening settings: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	settings := DefaultSettings()
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSettings, err)
	}

	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSettings, err)
	}

	return settings, nil
}

// validate verifies that settings values are usable, falling back to
// defaults for fields the loop cannot run without.
func (s *Settings) validate() error {
	if s.PingCount <= 0 {
		s.PingCount = common.DefaultPingCount
	}
	if s.SettleDelaySeconds < 0 {
		return fmt.Errorf("settle_delay must not be negative")
	}
	if s.GracePeriodSeconds < 0 {
		return fmt.Errorf("grace_period must not be negative")
	}
	if s.MaxRestarts < 0 {
		return fmt.Errorf("max_restarts must not be negative")
	}
	if s.RemoteHost == "" {
		s.RemoteHost = common.DefaultRemoteHost
	}
	if s.ClientPattern == "" {
		s.ClientPattern = common.DefaultClientPattern
	}
	if s.NetstartScript == "" {
		s.NetstartScript = common.DefaultNetstartScript
	}
	return nil
}

// Save writes the settings to the default location.
func (s *Settings) Save() error {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(configDir, common.SettingsFileName)

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("error serializing settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error saving settings: %w", err)
	}

	return nil
}

// SettleDelay returns the post-launch wait as a duration.
func (s *Settings) SettleDelay() time.Duration {
	return time.Duration(s.SettleDelaySeconds) * time.Second
}

// GracePeriod returns the post-SIGTERM wait as a duration.
func (s *Settings) GracePeriod() time.Duration {
	return time.Duration(s.GracePeriodSeconds) * time.Second
}
