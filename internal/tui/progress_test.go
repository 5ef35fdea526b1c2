package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/gwbsim/internal/sim"
	"github.com/san-kum/gwbsim/internal/viz"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestProgressAdvances(t *testing.T) {
	m := NewModel("md14", viz.NewStyles(viz.ThemePlain), nil)
	m, _ = update(t, m, progressMsg{done: 25, total: 100})
	assert.InDelta(t, 0.25, m.fraction(), 1e-12)

	// out of order updates never move the bar back
	m, _ = update(t, m, progressMsg{done: 10, total: 100})
	assert.Equal(t, 25, m.done)
	assert.Contains(t, m.View(), "25/100")
	assert.Contains(t, m.View(), "q to cancel")
}

func TestQuitCancels(t *testing.T) {
	canceled := false
	m := NewModel("x", viz.NewStyles(viz.ThemePlain), func() { canceled = true })
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, canceled)
	assert.Contains(t, m.View(), "canceling")
}

func TestDoneQuits(t *testing.T) {
	m := NewModel("md14", viz.NewStyles(viz.ThemePlain), nil)
	m, _ = update(t, m, progressMsg{done: 3, total: 9})
	m, cmd := update(t, m, doneMsg{res: &sim.Result{}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, 9, m.done)
	assert.True(t, strings.HasPrefix(m.View(), "✓ md14"))

	m, _ = update(t, NewModel("bad", viz.NewStyles(viz.ThemePlain), nil), doneMsg{err: errors.New("boom")})
	assert.Contains(t, m.View(), "boom")
}

func TestTickStopsWhenFinished(t *testing.T) {
	m := NewModel("x", viz.NewStyles(viz.ThemePlain), nil)
	_, cmd := update(t, m, tickMsg{})
	assert.NotNil(t, cmd)

	m.finished = true
	_, cmd = update(t, m, tickMsg{})
	assert.Nil(t, cmd)
}
