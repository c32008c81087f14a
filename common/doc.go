// Package common provides shared constants, types, utilities, and errors
// used throughout the VPN watchdog.
//
// This package holds the cross-cutting concerns:
//
//   - Constants: default probe targets, delays, and file names
//   - Errors: sentinel errors for consistent handling across packages
//   - Logger: leveled logging to stderr with optional rotating file output
//   - Utils: small helpers for file and string operations
//
// # Usage
//
//	import "github.com/yllada/vpn-watchdog/common"
//
//	// Use constants
//	host := common.DefaultRemoteHost
//
//	// Use logger
//	common.LogInfo("Checking internet connection")
//
//	// Check errors
//	if errors.Is(err, common.ErrProcessNotFound) {
//	    // Handle absent client
//	}
package common
