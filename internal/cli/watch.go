package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubebot"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive solve console",
	Long: `Start an interactive TUI showing the cube state, arm activity and solve
progress in real time.

Keyboard shortcuts:
  s       - Observe and solve
  a       - Abort the running solve
  r       - Recover a faulted session
  q/Esc   - Quit`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// Styles
var (
	watchTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	watchStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	watchMoveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	watchFaultStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	watchHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Messages
type watchTickMsg time.Time
type watchEventMsg watchEvent

type watchEvent struct {
	move     *cubebot.Move
	progress *cubebot.Progress
	fault    error
}

// Model
type watchModel struct {
	handle *botHandle

	events chan watchEvent

	progress  *cubebot.Progress
	moves     []string
	fault     error
	solving   bool
	startTime time.Time
	elapsed   time.Duration

	err      error
	quitting bool
}

func newWatchModel(h *botHandle) *watchModel {
	m := &watchModel{
		handle: h,
		events: make(chan watchEvent, 64),
	}
	h.Bot.OnMove(func(mv cubebot.Move, p cubebot.Progress) {
		m.events <- watchEvent{move: &mv, progress: &p}
	})
	h.Bot.OnProgress(func(p cubebot.Progress) {
		m.events <- watchEvent{progress: &p}
	})
	h.Bot.OnFault(func(err error) {
		m.events <- watchEvent{fault: err}
	})
	return m
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.waitEvent())
}

func (m *watchModel) tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

// waitEvent blocks on the bot's callback channel.
func (m *watchModel) waitEvent() tea.Cmd {
	return func() tea.Msg {
		return watchEventMsg(<-m.events)
	}
}

func (m *watchModel) apply(ev watchEvent) {
	if ev.move != nil {
		m.moves = append(m.moves, ev.move.Notation())
	}
	if ev.progress != nil {
		m.progress = ev.progress
		if ev.progress.StateName != "solving" {
			m.solving = false
		}
	}
	if ev.fault != nil {
		m.fault = ev.fault
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			if m.solving {
				_ = m.handle.Bot.Abort()
			}
			return m, tea.Quit
		case "s":
			if !m.solving {
				m.startSolve()
			}
		case "a":
			if m.solving {
				_ = m.handle.Bot.Abort()
			}
		case "r":
			if err := m.handle.Bot.Recover(context.Background()); err == nil {
				m.solving = true
				m.fault = nil
			} else {
				m.err = err
			}
		}
	case watchTickMsg:
		if m.solving {
			m.elapsed = time.Since(m.startTime)
		}
		return m, m.tickCmd()
	case watchEventMsg:
		m.apply(watchEvent(msg))
		return m, m.waitEvent()
	}
	return m, nil
}

func (m *watchModel) startSolve() {
	m.moves = nil
	m.fault = nil
	m.err = nil
	m.startTime = time.Now()
	m.elapsed = 0

	sess, err := m.handle.Bot.StartSolve(context.Background())
	if err != nil {
		m.err = err
		return
	}
	m.solving = true
	p := sess.Progress()
	m.progress = &p
}

func (m *watchModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(watchTitleStyle.Render("cubebot"))
	b.WriteString("\n\n")

	st := m.handle.Bot.Status()
	b.WriteString(watchStatusStyle.Render(
		fmt.Sprintf("left arm: %-9s  right arm: %-9s", st.Left, st.Right)))
	b.WriteString("\n\n")

	if m.progress != nil {
		if cube, err := cubebot.ParseFacelets(m.progress.Facelets); err == nil {
			b.WriteString(cube.String())
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("state: %s  moves: %d/%d  elapsed: %s\n",
			m.progress.StateName, m.progress.Completed, m.progress.Total,
			m.elapsed.Round(time.Millisecond)))
		if m.progress.Current != "" {
			b.WriteString(fmt.Sprintf("executing: %s\n", watchMoveStyle.Render(m.progress.Current)))
		}
	} else {
		b.WriteString("No session. Press 's' to solve the loaded cube.\n")
	}

	if len(m.moves) > 0 {
		b.WriteString("\n")
		b.WriteString(watchMoveStyle.Render(strings.Join(m.moves, " ")))
		b.WriteString("\n")
	}
	if m.fault != nil {
		b.WriteString("\n")
		b.WriteString(watchFaultStyle.Render(fmt.Sprintf("FAULT: %v", m.fault)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(watchFaultStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(watchHelpStyle.Render("s solve · a abort · r recover · q quit"))
	b.WriteString("\n")
	return b.String()
}

func runWatch(cmd *cobra.Command, args []string) error {
	h, err := newBot()
	if err != nil {
		return err
	}
	defer h.Close()

	p := tea.NewProgram(newWatchModel(h))
	_, err = p.Run()
	return err
}
