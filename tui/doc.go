// Package tui renders a live terminal status view of the watchdog loop.
// It is optional: the watchdog runs exactly the same with or without it,
// the view only mirrors the Event stream.
package tui
