package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yllada/vpn-watchdog/watchdog"
)

func TestModel_EventUpdatesView(t *testing.T) {
	m := NewModel("home.ovpn", "tun0", "4.2.2.2")

	updated, _ := m.Update(EventMsg{
		State:    watchdog.StateUnverified,
		PID:      1523,
		Restarts: 2,
		Message:  "probing connectivity",
	})
	m = updated.(Model)

	view := m.View()
	for _, want := range []string{"home.ovpn", "tun0", "4.2.2.2", "1523", "2", "probing connectivity"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestModel_DoneQuits(t *testing.T) {
	m := NewModel("home.ovpn", "tun0", "4.2.2.2")

	wantErr := errors.New("restart limit reached")
	updated, cmd := m.Update(DoneMsg{Err: wantErr})
	m = updated.(Model)

	if cmd == nil {
		t.Fatal("Update(DoneMsg) should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Update(DoneMsg) command is not tea.Quit")
	}
	if !m.Done() {
		t.Error("Done() = false after DoneMsg")
	}
	if !errors.Is(m.Err(), wantErr) {
		t.Errorf("Err() = %v, want %v", m.Err(), wantErr)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			m := NewModel("home.ovpn", "tun0", "4.2.2.2")

			var msg tea.Msg
			if key == "ctrl+c" {
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			} else {
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
			}

			updated, cmd := m.Update(msg)
			if cmd == nil {
				t.Fatalf("Update(%q) should return a quit command", key)
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Errorf("Update(%q) command is not tea.Quit", key)
			}
			if updated.(Model).Done() {
				t.Error("user quit must not count as a finished loop")
			}
		})
	}
}

func TestModel_HealthyView(t *testing.T) {
	m := NewModel("home.ovpn", "tun0", "4.2.2.2")

	updated, _ := m.Update(EventMsg{State: watchdog.StateHealthy, PID: 1523})
	view := updated.(Model).View()

	if !strings.Contains(view, "Healthy") {
		t.Errorf("View() missing healthy status:\n%s", view)
	}
}
