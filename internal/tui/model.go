// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/fanout"
)

const elapsedRounding = 100 * time.Millisecond

// Phase represents where the batch currently is in its lifecycle.
type Phase int

// Lifecycle phases in display order.
const (
	PhaseExpanding Phase = iota
	PhaseRunning
	PhaseDone
	PhaseFailed
)

// String returns a string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseExpanding:
		return "expanding"
	case PhaseRunning:
		return "running"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Running lipgloss.Style
	Done    lipgloss.Style
	Failed  lipgloss.Style
	Output  lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Done: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// Model represents the TUI application state for one batch.
type Model struct {
	name       string
	events     <-chan fanout.Event
	cancel     context.CancelFunc
	spinner    spinner.Model
	phase      Phase
	commands   int
	lastOutput string
	exitCode   int
	err        error
	startedAt  time.Time
	finished   time.Duration
	width      int
	height     int
	quitting   bool
	styles     *Styles
}

// NewModel creates a new TUI model that consumes the given event stream.
// cancel is invoked when the user quits before the batch has finished.
func NewModel(name string, events <-chan fanout.Event, cancel context.CancelFunc) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	return &Model{
		name:    name,
		events:  events,
		cancel:  cancel,
		spinner: s,
		phase:   PhaseExpanding,
		styles:  NewStyles(),
	}
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		WaitForEvent(m.events),
	)
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case EventMsg:
		m.applyEvent(msg.Event)

		return m, WaitForEvent(m.events)

	case StreamClosedMsg:
		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true

		if m.cancel != nil {
			m.cancel()
		}

		return m, tea.Quit
	}

	return m, nil
}

// applyEvent folds one progress event into the display state.
func (m *Model) applyEvent(event fanout.Event) {
	switch event.Type {
	case fanout.EventExpanded:
		m.commands = event.Commands

	case fanout.EventStarted:
		m.phase = PhaseRunning

		if event.Commands > 0 {
			m.commands = event.Commands
		}

		m.startedAt = event.Timestamp
		if m.startedAt.IsZero() {
			m.startedAt = time.Now()
		}

	case fanout.EventOutput:
		m.lastOutput = event.OutputLine

	case fanout.EventCompleted:
		m.phase = PhaseDone
		m.exitCode = event.ExitCode
		m.finished = m.elapsed()

	case fanout.EventFailed:
		m.phase = PhaseFailed
		m.exitCode = event.ExitCode
		m.err = event.Err
		m.finished = m.elapsed()
	}
}

func (m *Model) elapsed() time.Duration {
	if m.finished > 0 {
		return m.finished
	}

	if m.startedAt.IsZero() {
		return 0
	}

	return time.Since(m.startedAt)
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Cancelling...\n"
	}

	var view strings.Builder

	title := m.styles.Title.Render("fanout: " + m.name)
	view.WriteString(title)
	view.WriteString("\n")

	view.WriteString(m.statusLine())
	view.WriteString("\n")

	if m.lastOutput != "" && m.phase == PhaseRunning {
		view.WriteString("  ")
		view.WriteString(m.styles.Output.Render(m.lastOutput))
		view.WriteString("\n")
	}

	helpText := "'q' to cancel"
	if m.phase == PhaseDone || m.phase == PhaseFailed {
		helpText = "'q' to return to the terminal"
	}

	view.WriteString(m.styles.Help.Render(helpText))
	view.WriteString("\n")

	return view.String()
}

// statusLine renders the one-line phase summary.
func (m *Model) statusLine() string {
	commandsLabel := "commands"
	if m.commands == 1 {
		commandsLabel = "command"
	}

	switch m.phase {
	case PhaseExpanding:
		return fmt.Sprintf("%s expanding batch", m.spinner.View())

	case PhaseRunning:
		line := fmt.Sprintf("%s %s %d %s",
			m.spinner.View(),
			m.styles.Running.Render("running"),
			m.commands, commandsLabel)

		if elapsed := m.elapsed(); elapsed > 0 {
			line += m.styles.Output.Render(fmt.Sprintf(" (%v)", elapsed.Round(elapsedRounding)))
		}

		return line

	case PhaseDone:
		return fmt.Sprintf("%s %d %s in %v",
			m.styles.Done.Render("✓ completed"),
			m.commands, commandsLabel,
			m.finished.Round(elapsedRounding))

	case PhaseFailed:
		line := fmt.Sprintf("%s (exit code %d)",
			m.styles.Failed.Render("✗ failed"), m.exitCode)

		if m.err != nil {
			line += m.styles.Failed.Render(": " + m.err.Error())
		}

		return line
	}

	return ""
}
