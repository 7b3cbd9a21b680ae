package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/akiramusic/lavamon/internal/transport"
)

// Model is the Bubble Tea model for the monitoring dashboard. It owns the
// transport manager for one server and folds its events into a Controller.
type Model struct {
	serverName string
	manager    *transport.Manager
	events     <-chan transport.Event
	controller *Controller

	width  int
	height int

	spinner  spinner.Model
	paused   bool
	quitting bool
}

// tickMsg drives the once-a-second local uptime tick.
type tickMsg time.Time

// transportMsg wraps one event from the session goroutine.
type transportMsg transport.Event

// eventsClosedMsg means the session goroutine has wound down.
type eventsClosedMsg struct{}

// NewModel creates a dashboard model over a started transport manager.
func NewModel(serverName string, manager *transport.Manager, historyCapacity int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: ConnectingSpinnerFrames,
		FPS:    time.Second / 10,
	}

	return Model{
		serverName: serverName,
		manager:    manager,
		events:     manager.Events(),
		controller: NewController(historyCapacity),
		spinner:    sp,
	}
}

// Init starts the tick timers and the event pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.spinner.Tick,
		m.waitEventCmd(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.controller.Tick(time.Time(msg))
		return m, m.tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case transportMsg:
		m.controller.Apply(transport.Event(msg), time.Now())
		return m, m.waitEventCmd()

	case eventsClosedMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		m.manager.Stop()
		return m, tea.Quit

	case "r":
		m.manager.Refresh()

	case "p":
		// Pause mirrors a hidden tab: updates stop while paused, an
		// established socket stays open, and polling redials on resume.
		m.paused = !m.paused
		m.manager.SetVisible(!m.paused)
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// tickCmd returns a command that sends a tick after one second.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitEventCmd blocks on the next transport event.
func (m Model) waitEventCmd() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return transportMsg(ev)
	}
}

// Spinner returns the current frame of the connecting animation.
func (m Model) Spinner() string {
	return m.spinner.View()
}
