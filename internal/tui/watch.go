// Package tui provides the live polling view for viewctl.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/viewengine/viewctl/internal/models"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	pendingStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)

// Update is one observed poll result delivered to the watch view.
type Update struct {
	Attempt  int
	Snapshot *models.JobStatusSnapshot
}

// Done signals that the lifecycle finished, successfully or not.
type Done struct {
	Snapshot *models.JobStatusSnapshot
	Err      error
}

// Watch is the bubbletea model showing a single job's poll progress.
// Snapshots arrive over the updates channel; the poll loop itself runs
// outside the UI.
type Watch struct {
	spinner     spinner.Model
	url         string
	requestID   string
	maxAttempts int
	cancel      context.CancelFunc
	updates     <-chan tea.Msg

	attempt   int
	status    models.JobStatus
	message   string
	done      bool
	err       error
	canceling bool
}

// NewWatch creates a watch view for the given job. cancel is invoked
// when the user interrupts; the poll loop is then expected to deliver a
// final Done message.
func NewWatch(url, requestID string, maxAttempts int, updates <-chan tea.Msg, cancel context.CancelFunc) *Watch {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return &Watch{
		spinner:     sp,
		url:         url,
		requestID:   requestID,
		maxAttempts: maxAttempts,
		cancel:      cancel,
		updates:     updates,
	}
}

// Run starts the watch program and blocks until the lifecycle finishes.
func (w *Watch) Run() error {
	p := tea.NewProgram(w)
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (w *Watch) Init() tea.Cmd {
	return tea.Batch(w.spinner.Tick, w.waitForUpdate())
}

// waitForUpdate reads the next message from the poll loop.
func (w *Watch) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-w.updates
		if !ok {
			return nil
		}
		return msg
	}
}

// Update implements tea.Model.
func (w *Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !w.done && !w.canceling {
				w.canceling = true
				w.cancel()
			}
			return w, nil
		}

	case Update:
		w.attempt = msg.Attempt
		w.status = msg.Snapshot.Status
		w.message = msg.Snapshot.Message
		if w.requestID == "" {
			w.requestID = msg.Snapshot.RequestID
		}
		return w, w.waitForUpdate()

	case Done:
		w.done = true
		w.err = msg.Err
		if msg.Snapshot != nil {
			w.status = msg.Snapshot.Status
			w.message = msg.Snapshot.Message
		}
		return w, tea.Quit

	case spinner.TickMsg:
		if w.done {
			return w, nil
		}
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd
	}

	return w, nil
}

// View implements tea.Model.
func (w *Watch) View() string {
	header := titleStyle.Render("Retrieving ") + w.url + "\n"
	if w.requestID != "" {
		header += helpStyle.Render("request "+w.requestID) + "\n"
	}
	header += "\n"

	if w.done {
		return header + w.finalLine() + "\n"
	}

	line := fmt.Sprintf("%s [%d/%d] %s", w.spinner.View(), w.attempt, w.maxAttempts, w.statusLine())
	if w.canceling {
		line += pendingStyle.Render("  (canceling...)")
	}
	return header + line + "\n\n" + helpStyle.Render("ctrl+c to cancel") + "\n"
}

func (w *Watch) statusLine() string {
	status := string(w.status)
	if status == "" {
		status = "waiting"
	}
	if w.message != "" {
		return pendingStyle.Render(status) + " - " + w.message
	}
	return pendingStyle.Render(status)
}

func (w *Watch) finalLine() string {
	if w.err != nil {
		return failureStyle.Render("✗ " + w.err.Error())
	}
	switch w.status {
	case models.JobStatusComplete:
		return successStyle.Render("✓ complete")
	case models.JobStatusFailed, models.JobStatusCanceled:
		line := failureStyle.Render("✗ " + string(w.status))
		if w.message != "" {
			line += " - " + w.message
		}
		return line
	}
	return pendingStyle.Render(string(w.status))
}
