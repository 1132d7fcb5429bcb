package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cweiss/showsync/internal/domain"
	"github.com/cweiss/showsync/internal/tui/styles"
)

// RunFunc is the synchronization pass the progress view drives. It must
// honor ctx and report whole percentages through the callback.
type RunFunc func(ctx context.Context, progress domain.ProgressFunc) error

type progressMsg int

type doneMsg struct{ err error }

// ProgressModel renders a live progress bar for one synchronization pass.
// The pass runs in its own goroutine and feeds the model through a message
// channel; q or ctrl+c cancels it and the model waits for the pass to wind
// down before quitting.
type ProgressModel struct {
	run    RunFunc
	bar    progress.Model
	msgCh  chan tea.Msg
	ctx    context.Context
	cancel context.CancelFunc

	percent   int
	done      bool
	canceling bool
	err       error
}

func NewProgressModel(ctx context.Context, run RunFunc) *ProgressModel {
	ctx, cancel := context.WithCancel(ctx)
	bar := progress.New(progress.WithGradient(string(styles.TVDBGreen), string(styles.Green)))
	bar.Width = 50
	return &ProgressModel{
		run:    run,
		bar:    bar,
		msgCh:  make(chan tea.Msg, 16),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Err returns the pass outcome once the program has finished.
func (m *ProgressModel) Err() error { return m.err }

func (m *ProgressModel) Init() tea.Cmd {
	go func() {
		err := m.run(m.ctx, func(pct int) {
			m.msgCh <- progressMsg(pct)
		})
		m.msgCh <- doneMsg{err: err}
	}()
	return m.waitForMsg()
}

func (m *ProgressModel) waitForMsg() tea.Cmd {
	return func() tea.Msg { return <-m.msgCh }
}

func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width > 60 {
			width = 60
		}
		if width > 0 {
			m.bar.Width = width
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.canceling = true
			m.cancel()
		}
		return m, nil

	case progressMsg:
		m.percent = int(msg)
		cmd := m.bar.SetPercent(float64(msg) / 100)
		return m, tea.Batch(cmd, m.waitForMsg())

	case doneMsg:
		m.done = true
		m.err = msg.err
		m.cancel()
		return m, tea.Quit

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *ProgressModel) View() string {
	if m.done {
		if m.err != nil {
			return styles.ErrorStyle.Render("✗ sync failed: "+m.err.Error()) + "\n"
		}
		return styles.SuccessStyle.Render("✓ library synchronized") + "\n"
	}

	status := styles.HelpDescStyle.Render("q to cancel")
	if m.canceling {
		status = styles.HelpDescStyle.Render("canceling...")
	}
	return fmt.Sprintf("\n  %s\n\n  %s %s\n\n  %s\n",
		styles.TitleStyle.Render("Synchronizing library"),
		m.bar.View(),
		styles.SubtitleStyle.Render(fmt.Sprintf("%3d%%", m.percent)),
		status,
	)
}
