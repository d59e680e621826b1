package ui

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// IsInteractive reports whether stdout is attached to a terminal.
// Used to decide when to use interactive UI elements like spinners.
func IsInteractive() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// RunSpinner runs a minimal Bubble Tea spinner while executing the given action.
// The UI exits when the action completes and returns the action's error.
// Strings passed to status are shown faintly next to the title.
//
// Quitting the spinner (ctrl+c, q, esc) cancels the context handed to action,
// and RunSpinner returns only after action has returned.
func RunSpinner(ctx context.Context, title string, action func(ctx context.Context, status func(string)) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newSpinnerModel(ctx, cancel, title, action)
	p := tea.NewProgram(m)
	_, err := p.Run()
	cancel()
	<-m.finished
	if err != nil {
		return err
	}
	return m.result()
}

// ErrCanceled is returned when the user quits the spinner.
var ErrCanceled = errors.New("operation canceled")

type actionDoneMsg struct{ err error }

type spinnerModel struct {
	ctx      context.Context
	cancel   context.CancelFunc
	finished chan struct{}
	spin     spinner.Model
	style    lipgloss.Style

	mu     sync.Mutex
	title  string
	status string
	done   bool
	err    error
}

func newSpinnerModel(ctx context.Context, cancel context.CancelFunc, title string, action func(ctx context.Context, status func(string)) error) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := &spinnerModel{
		ctx:      ctx,
		cancel:   cancel,
		finished: make(chan struct{}),
		title:    title,
		spin:     s,
		style:    lipgloss.NewStyle().Padding(0, 1),
	}

	// Kick off the action in the background and notify on completion
	go func() {
		defer close(m.finished)
		// Small delay for smoother paint before heavy work
		time.Sleep(50 * time.Millisecond)
		err := action(ctx, m.setStatus)
		m.mu.Lock()
		if !m.done {
			m.err = err
			m.done = true
		}
		m.mu.Unlock()
	}()

	return m
}

func (m *spinnerModel) setStatus(s string) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

func (m *spinnerModel) snapshot() (title, status string, done bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title, m.status, m.done, m.err
}

func (m *spinnerModel) result() error {
	_, _, _, err := m.snapshot()
	return err
}

// quit records the cancellation and stops the action.
func (m *spinnerModel) quit() {
	m.mu.Lock()
	if !m.done {
		m.err = ErrCanceled
		m.done = true
	}
	m.mu.Unlock()
	m.cancel()
}

func (m *spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForCompletion(m))
}

func waitForCompletion(m *spinnerModel) tea.Cmd {
	return func() tea.Msg {
		// Poll until the action goroutine marks as done or context is canceled
		for {
			select {
			case <-m.ctx.Done():
				return actionDoneMsg{err: m.ctx.Err()}
			default:
				if _, _, done, err := m.snapshot(); done {
					return actionDoneMsg{err: err}
				}
				time.Sleep(75 * time.Millisecond)
			}
		}
	}
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quit()
			return m, tea.Quit
		}
	case actionDoneMsg:
		m.mu.Lock()
		if !m.done {
			m.err = msg.err
			m.done = true
		}
		m.mu.Unlock()
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	title, status, done, err := m.snapshot()
	if done {
		if err != nil {
			return m.style.Render("✗ " + title + " (" + err.Error() + ")\n")
		}
		return m.style.Render("✓ " + title + "\n")
	}
	line := m.spin.View() + " " + title
	if status != "" {
		line += " " + lipgloss.NewStyle().Faint(true).Render(status)
	}
	return m.style.Render(line)
}
