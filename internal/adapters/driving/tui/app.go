// Package tui implements a minimal, read-only progress monitor for one
// sync session: it attaches to a driving.SessionControl and renders each
// source's progress/status as it changes, following the teacher's
// Elm-architecture app.go shape (Init/Update/View over tea.Model) without
// the teacher's view-stack/navigation machinery a single read-only screen
// doesn't need.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"

	"github.com/syncevo-core/syncevo-core/internal/adapters/driving/tui/styles"
	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driving"
)

const pollInterval = 200 * time.Millisecond

// tickMsg triggers the next poll of the session's status/progress.
type tickMsg time.Time

// doneMsg carries the session's final report once it reaches a terminal
// state.
type doneMsg struct {
	report domain.SyncReport
	err    error
}

// App is the monitor's tea.Model: it polls control for status/progress
// and renders a bubbles/progress bar per source, replacing the
// search/documents/sources view stack of the teacher's own App with the
// single screen a sync session needs (spec.md §6's `progress`/`status`/
// `session_changed` signals, polled rather than pushed since
// driving.SessionControl exposes no subscription channel of its own).
type App struct {
	control driving.SessionControl
	styles  *styles.Styles

	state    domain.SessionState
	statuses map[string]domain.SourceStatus
	bars     map[string]progress.Model
	percents map[string]float64

	report domain.SyncReport
	err    error
	done   bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates a monitor attached to control.
func NewApp(control driving.SessionControl) *App {
	return &App{
		control:  control,
		styles:   styles.DefaultStyles(),
		statuses: make(map[string]domain.SourceStatus),
		bars:     make(map[string]progress.Model),
		percents: make(map[string]float64),
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.poll(), a.awaitDone())
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return a, tea.Quit
		}
		return a, nil

	case tickMsg:
		if a.done {
			return a, nil
		}
		state, statuses := a.control.GetStatus()
		a.state = state
		for _, s := range statuses {
			a.statuses[s.SourceID] = s
		}
		for _, p := range a.control.GetProgress() {
			if _, ok := a.bars[p.SourceID]; !ok {
				a.bars[p.SourceID] = progress.New(progress.WithDefaultGradient())
			}
			a.percents[p.SourceID] = percentOf(p)
		}
		return a, a.poll()

	case doneMsg:
		a.done = true
		a.report = msg.report
		a.err = msg.err
		return a, tea.Quit
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("syncevo"))
	b.WriteString("\n\n")

	for _, id := range a.sortedSourceIDs() {
		status := a.statuses[id]
		bar := a.bars[id]
		b.WriteString(fmt.Sprintf("%-20s %s %s\n", id, bar.ViewAs(a.percents[id]), a.styleState(status.State)))
	}

	b.WriteString("\n")
	b.WriteString(a.styles.StatusBar.Render(a.statusLine()))
	b.WriteString("\n")
	return b.String()
}

// Run attaches and blocks until the session reaches a terminal state or
// the user quits, returning the session's final report.
func (a *App) Run() (domain.SyncReport, error) {
	p := tea.NewProgram(a)
	if _, err := p.Run(); err != nil {
		return domain.SyncReport{}, err
	}
	return a.report, a.err
}

func (a *App) poll() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (a *App) awaitDone() tea.Cmd {
	return func() tea.Msg {
		report, err := a.control.Sync(context.Background())
		return doneMsg{report: report, err: err}
	}
}

func (a *App) sortedSourceIDs() []string {
	ids := make([]string, 0, len(a.statuses))
	for id := range a.statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (a *App) statusLine() string {
	if a.done {
		if a.err != nil {
			return fmt.Sprintf("failed: %v (q to quit)", a.err)
		}
		return "done (q to quit)"
	}
	return fmt.Sprintf("%s (ctrl+c to detach)", a.state)
}

func (a *App) styleState(state domain.SourceRunState) string {
	switch state {
	case domain.SourceDone:
		return a.styles.Success.Render(state.String())
	case domain.SourceAborted:
		return a.styles.Error.Render(state.String())
	default:
		return a.styles.Muted.Render(state.String())
	}
}

// percentOf computes a source's overall completion ratio from its
// prepare/send/receive counters.
func percentOf(p domain.SourceProgress) float64 {
	total := p.PrepareTotal + p.SendTotal + p.ReceiveTotal
	done := p.PrepareCount + p.SendCount + p.ReceiveCount
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}
