package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-synesthesia/canvas"
	"go-synesthesia/debug"
	"go-synesthesia/grid"
	"go-synesthesia/palette"
	"go-synesthesia/sequencer"
	"go-synesthesia/theme"
	"go-synesthesia/widgets"
)

// One terminal character covers this many canvas pixels
const (
	pxPerCol = 20
	pxPerRow = 40
)

const (
	minBrush  = 2
	maxBrush  = 100
	tempoStep = 5
	brushStep = 4
)

// layoutBounds holds cached layout info
type layoutBounds struct {
	canvasTop  int
	canvasLeft int
}

type Model struct {
	Engine *sequencer.Engine
	Clock  *sequencer.Clock
	Canvas *canvas.Canvas
	Theme  *theme.Theme

	color    palette.ID
	brush    int
	painting bool
	lastX    int // canvas px of the previous dab
	lastY    int
	started  bool // transport starts on first paint
	showHelp bool
	status   string
	quitting bool
	bounds   *layoutBounds
}

type UpdateMsg struct{}

func NewModel(engine *sequencer.Engine, clock *sequencer.Clock, cv *canvas.Canvas, th *theme.Theme, brush int) Model {
	if brush < minBrush {
		brush = minBrush
	}
	return Model{
		Engine: engine,
		Clock:  clock,
		Canvas: cv,
		Theme:  th,
		brush:  min(brush, maxBrush),
		bounds: &layoutBounds{},
	}
}

func ListenForUpdates(engine *sequencer.Engine) tea.Cmd {
	return func() tea.Msg {
		<-engine.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Engine)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Clock.Stop()
			m.Engine.Shutdown()
			return m, tea.Quit

		case "1", "2", "3", "4", "5", "6", "7":
			m.color = palette.ID(msg.String()[0] - '1')

		case "[":
			m.brush = max(m.brush-brushStep, minBrush)

		case "]":
			m.brush = min(m.brush+brushStep, maxBrush)

		case "c":
			m.Canvas.Clear()
			m.setStatus(m.Engine.OnClear(m.Canvas))

		case " ":
			if m.Clock.Running() {
				m.Clock.Stop()
			} else {
				m.Clock.Start()
				m.started = true
			}

		case "+", "=":
			m.Clock.SetTempo(m.Clock.Tempo() + tempoStep)

		case "-", "_":
			m.Clock.SetTempo(m.Clock.Tempo() - tempoStep)

		case "?":
			m.showHelp = !m.showHelp
		}

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case UpdateMsg:
		return m, ListenForUpdates(m.Engine)
	}

	return m, nil
}

// toCanvas maps a terminal cell to the canvas pixel at its centre
func (m Model) toCanvas(x, y int) (int, int, bool) {
	cx := (x-m.bounds.canvasLeft)*pxPerCol + pxPerCol/2
	cy := (y-m.bounds.canvasTop)*pxPerRow + pxPerRow/2
	b := m.Canvas.Bounds()
	if cx < 0 || cy < 0 || cx >= b.Dx() || cy >= b.Dy() {
		return cx, cy, false
	}
	return cx, cy, true
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	cx, cy, inside := m.toCanvas(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if !inside {
			return m
		}
		switch msg.Button {
		case tea.MouseButtonLeft, tea.MouseButtonRight:
			m.painting = true
			m.lastX, m.lastY = cx, cy
			m.Canvas.Dab(cx, cy, m.brush, m.paint(msg.Button))
			if !m.started {
				m.Clock.Start()
				m.started = true
			}
		}

	case tea.MouseActionMotion:
		if !m.painting {
			return m
		}
		m.Canvas.Stroke(m.lastX, m.lastY, cx, cy, m.brush, m.paint(msg.Button))
		m.lastX, m.lastY = cx, cy

	case tea.MouseActionRelease:
		if !m.painting {
			return m
		}
		m.painting = false
		m.setStatus(m.Engine.OnStrokeSettled(m.Canvas))
	}
	return m
}

// paint returns the pixel value a button lays down; the right button erases
func (m Model) paint(b tea.MouseButton) palette.RGB {
	if b == tea.MouseButtonRight {
		return palette.Background
	}
	c, ok := palette.Get(m.color)
	if !ok {
		return palette.Background
	}
	return c.RGB
}

func (m *Model) setStatus(err error) {
	if err != nil {
		debug.Log("tui", "settle: %v", err)
		m.status = err.Error()
		return
	}
	m.status = ""
}

// canvasBlocks samples the canvas once per terminal character
func (m Model) canvasBlocks() [][][3]uint8 {
	b := m.Canvas.Bounds()
	cols, rows := b.Dx()/pxPerCol, b.Dy()/pxPerRow
	even, odd := m.Theme.Checker()

	out := make([][][3]uint8, rows)
	for r := range out {
		out[r] = make([][3]uint8, cols)
		for c := range out[r] {
			x, y := c*pxPerCol+pxPerCol/2, r*pxPerRow+pxPerRow/2
			px := m.Canvas.At(x, y)
			if _, ok := palette.Lookup(px); ok {
				out[r][c] = px
				continue
			}
			if (x/grid.CellSize+y/grid.CellSize)%2 == 0 {
				out[r][c] = even
			} else {
				out[r][c] = odd
			}
		}
	}
	return out
}

func (m Model) swatches() []widgets.Swatch {
	all := palette.All()
	out := make([]widgets.Swatch, len(all))
	for i, c := range all {
		out[i] = widgets.Swatch{Key: fmt.Sprint(i + 1), Name: c.Name, Note: c.Letter, Color: c.RGB}
	}
	return out
}

func (m Model) cellLines() string {
	liveStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	var lines []string
	for _, v := range m.Engine.Snapshot() {
		mark := dimStyle.Render(string(m.Theme.Symbols.Silent))
		if v.Live {
			mark = liveStyle.Render(string(m.Theme.Symbols.Live))
		}
		swatch := " "
		if c, ok := v.Stats.DominantColor(); ok {
			swatch = widgets.RenderPad(c.RGB)
		}
		lines = append(lines, fmt.Sprintf("%s %2d %-10s %s %5dpx  %s", mark, v.ID, v.Instrument, swatch, v.Stats.Shaded, v.Pattern))
	}
	return strings.Join(lines, "\n")
}

func keyHelp() []widgets.KeySection {
	return []widgets.KeySection{
		{Title: "Paint", Keys: []widgets.KeyBinding{
			{Key: "mouse left", Desc: "paint with the current color"},
			{Key: "mouse right", Desc: "erase"},
			{Key: "1-7", Desc: "pick color"},
			{Key: "[ ]", Desc: "brush size"},
			{Key: "c", Desc: "clear canvas"},
		}},
		{Title: "Transport", Keys: []widgets.KeyBinding{
			{Key: "space", Desc: "start/stop"},
			{Key: "+ -", Desc: "tempo"},
		}},
		{Keys: []widgets.KeyBinding{
			{Key: "?", Desc: "toggle help"},
			{Key: "q", Desc: "quit"},
		}},
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	playState := "STOP"
	if m.Clock.Running() {
		playState = "PLAY"
	}
	live := m.Engine.Lifecycle().LiveCount()
	header := headerStyle.Render(fmt.Sprintf("go-synesthesia  %s  %3.0fbpm  live:%d/%d  brush:%d",
		playState, m.Clock.Tempo(), live, m.Engine.Grid().Len(), m.brush))

	bar := widgets.RenderSwatches(m.swatches(), int(m.color))
	canvasView := widgets.RenderBlocks(m.canvasBlocks())

	help := dimStyle.Render("1-7:color  [/]:brush  right-drag:erase  c:clear  space:play  +/-:tempo  ?:help  q:quit")

	// Compute layout bounds
	m.bounds.canvasTop = 1 + lipgloss.Height(header) + 1 + lipgloss.Height(bar) + 1
	m.bounds.canvasLeft = 0

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(bar)
	out.WriteString("\n\n")
	out.WriteString(canvasView)
	out.WriteString("\n\n")
	out.WriteString(m.cellLines())
	out.WriteString("\n\n")
	if m.showHelp {
		out.WriteString(widgets.RenderKeyHelp(keyHelp()))
	} else {
		out.WriteString(help)
	}

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(m.status))
	}

	return out.String()
}
