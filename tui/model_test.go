package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-synesthesia/canvas"
	"go-synesthesia/grid"
	"go-synesthesia/palette"
	"go-synesthesia/pattern"
	"go-synesthesia/sequencer"
	"go-synesthesia/theme"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	g, err := grid.New(3, 4)
	require.NoError(t, err)
	clock := sequencer.NewClock()
	t.Cleanup(clock.Stop)

	e, err := sequencer.NewEngine(g, sequencer.NewLifecycle(g.Len(), clock, nil), pattern.NewRand(1))
	require.NoError(t, err)
	w, h := g.Size()
	m := NewModel(e, clock, canvas.New(w, h), theme.New(theme.Dusk()), 12)
	m.View() // lays out the canvas
	return m
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func mouse(x, y int, action tea.MouseAction, b tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: b}
}

func TestColorAndBrushKeys(t *testing.T) {
	m := newTestModel(t)
	m = send(m, key("3"))
	assert.Equal(t, palette.ID(2), m.color)

	m = send(m, key("]"), key("]"))
	assert.Equal(t, 20, m.brush)
	for i := 0; i < 50; i++ {
		m = send(m, key("["))
	}
	assert.Equal(t, minBrush, m.brush)
}

func TestPaintStrokeSettles(t *testing.T) {
	m := newTestModel(t)
	top := m.bounds.canvasTop

	m = send(m,
		key("2"),
		mouse(0, top, tea.MouseActionPress, tea.MouseButtonLeft),
		mouse(3, top+1, tea.MouseActionMotion, tea.MouseButtonLeft),
	)
	assert.True(t, m.painting)
	assert.True(t, m.Clock.Running(), "first paint starts the transport")
	assert.Equal(t, 0, m.Engine.Lifecycle().LiveCount(), "nothing settles mid-stroke")

	m = send(m, mouse(3, top+1, tea.MouseActionRelease, tea.MouseButtonNone))
	assert.False(t, m.painting)
	require.Equal(t, 1, m.Engine.Lifecycle().LiveCount())
	h := m.Engine.Lifecycle().Handle(0)
	require.NotNil(t, h)
	assert.Equal(t, "C#", h.Pattern().Slots[0].Pitch.Letter)

	// right-drag over the same spot erases it
	m = send(m,
		key("]"), key("]"), key("]"), key("]"), key("]"), key("]"),
		mouse(0, top, tea.MouseActionPress, tea.MouseButtonRight),
		mouse(3, top+1, tea.MouseActionMotion, tea.MouseButtonRight),
		mouse(3, top+1, tea.MouseActionRelease, tea.MouseButtonNone),
	)
	assert.Equal(t, 0, m.Engine.Lifecycle().LiveCount())
}

func TestClearKey(t *testing.T) {
	m := newTestModel(t)
	top := m.bounds.canvasTop
	m = send(m,
		mouse(12, top+2, tea.MouseActionPress, tea.MouseButtonLeft),
		mouse(12, top+2, tea.MouseActionRelease, tea.MouseButtonNone),
	)
	require.Equal(t, 1, m.Engine.Lifecycle().LiveCount())

	m = send(m, key("c"))
	assert.Equal(t, 0, m.Engine.Lifecycle().LiveCount())
	assert.Empty(t, m.status)
}

func TestClicksOutsideCanvasIgnored(t *testing.T) {
	m := newTestModel(t)
	m = send(m,
		mouse(0, 0, tea.MouseActionPress, tea.MouseButtonLeft),
		mouse(0, 0, tea.MouseActionRelease, tea.MouseButtonNone),
	)
	assert.False(t, m.Clock.Running())
	assert.Equal(t, 0, m.Engine.Lifecycle().LiveCount())
}

func TestTransportKeys(t *testing.T) {
	m := newTestModel(t)
	m = send(m, key(" "))
	assert.True(t, m.Clock.Running())
	m = send(m, key(" "))
	assert.False(t, m.Clock.Running())

	m = send(m, key("+"))
	assert.Equal(t, float64(sequencer.DefaultTempo+tempoStep), m.Clock.Tempo())
	m = send(m, key("-"), key("-"))
	assert.Equal(t, float64(sequencer.DefaultTempo-tempoStep), m.Clock.Tempo())
}

func TestViewShowsCells(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	assert.Contains(t, out, "go-synesthesia")
	assert.Contains(t, out, "atmosphere")
	assert.Contains(t, out, "piano")

	m = send(m, key("?"))
	assert.Contains(t, m.View(), "clear canvas")
}
