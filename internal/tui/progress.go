// Package tui shows a live progress view while the engine bins a catalog.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/sim"
	"github.com/san-kum/gwbsim/internal/viz"
)

const barWidth = 40

type progressMsg struct{ done, total int }

type doneMsg struct {
	res *sim.Result
	err error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea model of one run.
type Model struct {
	label    string
	styles   viz.Styles
	cancel   context.CancelFunc
	start    time.Time
	frame    int
	done     int
	total    int
	finished bool
	canceled bool
	res      *sim.Result
	err      error
}

func NewModel(label string, styles viz.Styles, cancel context.CancelFunc) Model {
	return Model{label: label, styles: styles, cancel: cancel, start: time.Now()}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.canceled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
	case progressMsg:
		if msg.done > m.done {
			m.done = msg.done
		}
		m.total = msg.total
	case tickMsg:
		m.frame++
		if !m.finished {
			return m, tick()
		}
	case doneMsg:
		m.finished = true
		m.res, m.err = msg.res, msg.err
		if m.res != nil {
			m.done = m.total
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) fraction() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m Model) View() string {
	var b strings.Builder
	st := m.styles
	elapsed := time.Since(m.start).Round(100 * time.Millisecond)

	switch {
	case m.finished && m.err != nil:
		b.WriteString(st.Fail.Render("✗ "+m.label) + " " + m.err.Error() + "\n")
		return b.String()
	case m.finished:
		b.WriteString(st.OK.Render("✓ "+m.label) + st.Muted.Render(fmt.Sprintf(" %d systems in %s", m.total, elapsed)) + "\n")
		return b.String()
	}

	b.WriteString(viz.Spinner(m.frame) + " " + st.Title.Render(m.label) + "\n")
	b.WriteString(st.ProgressBar(m.fraction(), barWidth))
	b.WriteString(st.Value.Render(fmt.Sprintf(" %5.1f%%", 100*m.fraction())))
	b.WriteString(st.Label.Render(fmt.Sprintf("  %d/%d  %s", m.done, m.total, elapsed)) + "\n")
	if m.canceled {
		b.WriteString(st.Warn.Render("canceling...") + "\n")
	} else {
		b.WriteString(st.Muted.Render("q to cancel") + "\n")
	}
	return b.String()
}

// Observer forwards engine progress to p, at most about 200 updates per
// run. It is safe for concurrent use by engine workers.
func Observer(p *tea.Program) dynamo.Observer {
	var last atomic.Int64
	return dynamo.ObserverFunc(func(done, total int) {
		step := int64(max(1, total/200))
		n := int64(done)
		prev := last.Load()
		if done < total && n-prev < step {
			return
		}
		if !last.CompareAndSwap(prev, n) {
			return
		}
		p.Send(progressMsg{done: done, total: total})
	})
}

// Run executes run under a progress view. The context passed to run is
// canceled when the user quits the view.
func Run(ctx context.Context, label string, styles viz.Styles, run func(context.Context, dynamo.Observer) (*sim.Result, error)) (*sim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(label, styles, cancel))
	go func() {
		res, err := run(ctx, Observer(p))
		p.Send(doneMsg{res: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress view: %w", err)
	}
	m, ok := final.(Model)
	if !ok || !m.finished {
		return nil, context.Canceled
	}
	return m.res, m.err
}
