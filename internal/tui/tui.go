// Package tui provides a Bubble Tea view of the live tracking session.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/devtick/devtick/internal/store"
	"github.com/devtick/devtick/internal/tracker"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	trackingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	idleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245"))

	// Key=value label
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	flagOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	flagOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// tickMsg refreshes the view once per second.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type model struct {
	store store.Store
	doc   store.Document
	now   time.Time

	vp    viewport.Model
	ready bool
	width int
}

// Run renders the live status view until the user quits.
func Run(st store.Store) error {
	m := model{store: st, doc: st.Read(), now: time.Now()}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case tickMsg:
		m.doc = m.store.Read()
		m.now = time.Time(msg)
		m.vp.SetContent(m.heartbeatLog())
		return m, tickCmd()

	case tea.WindowSizeMsg:
		headerHeight := 8
		footerHeight := 1
		m.width = msg.Width
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - headerHeight - footerHeight
		}
		m.vp.SetContent(m.heartbeatLog())
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("devtick") + "\n\n")

	state := idleStyle.Render("IDLE")
	elapsed := m.doc.TotalDuration
	if m.doc.IsOpen {
		state = trackingStyle.Render("TRACKING")
		if start, err := time.Parse(time.RFC3339, m.doc.EditTime); err == nil {
			elapsed = tracker.Elapsed(start, m.now)
		}
	}

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("State:"), state))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Elapsed:"), timeStyle.Render(elapsed)))
	b.WriteString(fmt.Sprintf("%s %d\n", labelStyle.Render("Keystrokes:"), m.doc.KeystrokeCount))
	b.WriteString(fmt.Sprintf("%s %d\n\n", labelStyle.Render("Heartbeats:"), len(m.doc.Heartbeats)))
	b.WriteString(sectionHeader.Render("Heartbeat log") + "\n")
	b.WriteString(m.vp.View() + "\n")
	b.WriteString(statusBarStyle.Render("q: quit  ↑/↓: scroll"))
	return b.String()
}

// heartbeatLog renders the heartbeat history, newest last.
func (m model) heartbeatLog() string {
	if len(m.doc.Heartbeats) == 0 {
		return dimStyle.Render("no heartbeats recorded yet")
	}

	var b strings.Builder
	for _, hb := range m.doc.Heartbeats {
		flags := renderFlag("task", hb.IsTaskRunning) + " " +
			renderFlag("compile", hb.IsCompiling) + " " +
			renderFlag("debug", hb.IsDebugging)
		b.WriteString(fmt.Sprintf("%s  %s:%d:%d  %s\n",
			timeStyle.Render(hb.Timestamp.Format("15:04:05")),
			hb.FilePath,
			hb.CursorPosition.Line,
			hb.CursorPosition.Character,
			flags,
		))
	}
	return b.String()
}

func renderFlag(name string, on bool) string {
	if on {
		return flagOnStyle.Render(name)
	}
	return flagOffStyle.Render(name)
}
