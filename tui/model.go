package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yllada/vpn-watchdog/watchdog"
)

// EventMsg carries a watchdog state transition into the view.
type EventMsg watchdog.Event

// DoneMsg signals that the watchdog loop has returned.
type DoneMsg struct {
	Err error
}

// Model is the bubbletea model for the status view.
type Model struct {
	spinner spinner.Model

	search     string
	iface      string
	remoteHost string

	state    watchdog.State
	pid      int
	restarts int
	message  string

	done bool
	err  error
}

// NewModel creates the status view for one supervised client.
func NewModel(search, iface, remoteHost string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = pendingStyle

	return Model{
		spinner:    s,
		search:     search,
		iface:      iface,
		remoteHost: remoteHost,
		state:      watchdog.StateNoClient,
		message:    "starting up",
	}
}

// Err returns the watchdog result once the view has received DoneMsg.
func (m Model) Err() error {
	return m.err
}

// Done reports whether the watchdog loop finished, as opposed to the view
// being quit by the user.
func (m Model) Done() bool {
	return m.done
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case EventMsg:
		m.state = msg.State
		m.pid = msg.PID
		m.restarts = msg.Restarts
		m.message = msg.Message
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var status string
	switch {
	case m.done && m.err != nil:
		status = unhealthyStyle.Render("✗ " + m.err.Error())
	case m.state == watchdog.StateHealthy:
		status = healthyStyle.Render("✓ " + m.state.String())
	case m.state == watchdog.StateUnhealthy:
		status = unhealthyStyle.Render("✗ " + m.state.String())
	default:
		status = m.spinner.View() + pendingStyle.Render(m.state.String())
	}

	pid := "-"
	if m.pid > 0 {
		pid = strconv.Itoa(m.pid)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("VPN Watchdog"),
		"",
		fmt.Sprintf("%s %s", labelStyle.Render("Client"), m.search),
		fmt.Sprintf("%s %s", labelStyle.Render("Interface"), m.iface),
		fmt.Sprintf("%s %s", labelStyle.Render("Probe host"), m.remoteHost),
		fmt.Sprintf("%s %s", labelStyle.Render("PID"), pid),
		fmt.Sprintf("%s %d", labelStyle.Render("Restarts"), m.restarts),
		"",
		fmt.Sprintf("%s %s", labelStyle.Render("Status"), status),
		messageStyle.Render(m.message),
	)

	return frameStyle.Render(body) + helpStyle.Render("\n q quit")
}
