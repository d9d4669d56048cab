package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"leveller/internal/counter"
	"leveller/internal/model"
)

// keyMap binds the counter panel keys.
type keyMap struct {
	Tap    key.Binding
	Manual key.Binding
	End    key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Tap: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "count"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual count"),
		),
		End: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "end session"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f2f2f2"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9aa0a6"))
	countStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a6e3a1"))
	doneStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9e2af"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#777777")).
			Padding(1, 2)
)

// CounterModel is the interactive counting panel. It owns a Counter
// whose session was already started or resumed by the caller; the
// panel only records events and ends the session.
type CounterModel struct {
	counter   *counter.Counter
	session   model.MantraSession
	keys      keyMap
	bar       progress.Model
	width     int
	completed bool
	err       error
}

// NewCounter builds the panel around a live counter session.
func NewCounter(c *counter.Counter, session model.MantraSession) *CounterModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return &CounterModel{
		counter: c,
		session: session,
		keys:    newKeyMap(),
		bar:     bar,
		width:   80,
	}
}

func (m *CounterModel) Init() tea.Cmd {
	return nil
}

func (m *CounterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-12, 60)
		return m, nil

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		if b, ok := bar.(progress.Model); ok {
			m.bar = b
		}
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.counter.Flush(context.Background())
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tap):
			return m, m.record(model.ChannelTap)

		case key.Matches(msg, m.keys.Manual):
			return m, m.record(model.ChannelManual)

		case key.Matches(msg, m.keys.End):
			session, err := m.counter.End(context.Background(), nil)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.session = session
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *CounterModel) record(channel model.Channel) tea.Cmd {
	if m.completed {
		return nil
	}
	done, err := m.counter.RecordEvent(context.Background(), channel)
	if err != nil {
		m.err = err
		return nil
	}
	if s, ok := m.counter.Session(); ok {
		m.session = s
	}
	m.completed = done
	return m.bar.SetPercent(min(m.session.Progress(), 1))
}

func (m *CounterModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.session.Name))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.session.MantraText))
	b.WriteString("\n\n")

	count := fmt.Sprintf("%d / %d", m.session.CurrentRepetitions, m.session.RequiredRepetitions)
	b.WriteString(countStyle.Render(count))
	b.WriteString("\n")
	b.WriteString(m.bar.View())
	b.WriteString("\n")

	if m.completed {
		b.WriteString("\n")
		b.WriteString(doneStyle.Render("Session complete."))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	started := time.UnixMilli(m.session.StartedAt).Format("15:04:05")
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("started %s   space count · m manual · e end · q quit", started)))

	return panelStyle.Render(b.String())
}

// Run starts the panel in the alternate screen and blocks until exit.
func Run(c *counter.Counter, session model.MantraSession) error {
	p := tea.NewProgram(NewCounter(c, session), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
