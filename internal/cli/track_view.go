package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chronotrakr/internal/api"
	"chronotrakr/internal/domain"
	"chronotrakr/internal/services"
)

type tickMsg time.Time

// trackModel is the live view shown by "ct track" on a terminal. It
// re-arms its tick only while the session it was started for is running.
type trackModel struct {
	ctx         context.Context
	businessAPI api.BusinessAPI
	styles      Styles
	session     *services.TaskSession
	interval    time.Duration
	elapsed     time.Duration

	stopped *domain.LogEntry
	err     error
	done    bool
}

func newTrackModel(ctx context.Context, businessAPI api.BusinessAPI, styles Styles, session *services.TaskSession, interval time.Duration) trackModel {
	return trackModel{
		ctx:         ctx,
		businessAPI: businessAPI,
		styles:      styles,
		session:     session,
		interval:    interval,
		elapsed:     session.Elapsed,
	}
}

func (m trackModel) Init() tea.Cmd {
	return m.tick()
}

func (m trackModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m trackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		current, err := m.businessAPI.GetCurrentSession(m.ctx)
		if err != nil {
			m.err, m.done = err, true
			return m, tea.Quit
		}
		if current == nil || current.Task.ID != m.session.Task.ID {
			m.done = true
			return m, tea.Quit
		}
		m.elapsed = current.Elapsed
		return m, m.tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "s", "enter", "q", "ctrl+c", "esc":
			return m.stop()
		}
	}
	return m, nil
}

func (m trackModel) stop() (tea.Model, tea.Cmd) {
	entry, err := m.businessAPI.StopTask(m.ctx, m.session.Task.ID)
	m.stopped, m.err, m.done = entry, err, true
	return m, tea.Quit
}

func (m trackModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n\n",
		m.styles.Header.Render("Tracking"),
		m.session.Task.Name,
		m.styles.Dim.Render("· "+m.session.Project.Name))
	fmt.Fprintf(&b, "  %s\n\n", m.styles.Clock.Render(m.businessAPI.FormatElapsed(m.elapsed)))
	b.WriteString(m.styles.Dim.Render("s/enter/q stop and log"))
	b.WriteString("\n")
	return b.String()
}
