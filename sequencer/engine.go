package sequencer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"go-synesthesia/canvas"
	"go-synesthesia/debug"
	"go-synesthesia/grid"
	"go-synesthesia/histogram"
	"go-synesthesia/pattern"
)

// Engine runs the rescan → generate → reconcile pipeline. It owns the grid
// and the lifecycle table; nothing else writes to either.
type Engine struct {
	mu        sync.Mutex
	grid      *grid.Grid
	lifecycle *Lifecycle
	rng       *rand.Rand
	patterns  []pattern.Pattern // last generated, per cell

	// Notify UI of updates
	UpdateChan chan struct{}
}

// CellView is a read-only snapshot of one cell for display
type CellView struct {
	ID         grid.CellID
	Row, Col   int
	Instrument pattern.Instrument
	Stats      histogram.Stats
	Quadrants  [4]histogram.Stats
	Pattern    pattern.Pattern
	Live       bool
}

// NewEngine wires a grid to a lifecycle table of the same size
func NewEngine(g *grid.Grid, l *Lifecycle, rng *rand.Rand) (*Engine, error) {
	if g.Len() != l.Len() {
		return nil, fmt.Errorf("%w: grid has %d cells, lifecycle %d", ErrUnknownCell, g.Len(), l.Len())
	}
	if rng == nil {
		rng = pattern.NewRand(0)
	}
	e := &Engine{
		grid:       g,
		lifecycle:  l,
		rng:        rng,
		patterns:   make([]pattern.Pattern, g.Len()),
		UpdateChan: make(chan struct{}, 1),
	}
	for _, c := range g.Cells() {
		e.patterns[c.ID] = pattern.Silent(c.Kind())
	}
	return e, nil
}

// Grid returns the engine's grid
func (e *Engine) Grid() *grid.Grid {
	return e.grid
}

// Lifecycle returns the engine's handle table
func (e *Engine) Lifecycle() *Lifecycle {
	return e.lifecycle
}

// OnStrokeSettled rescans the whole canvas and reconciles every cell.
// A failing cell doesn't stop the others; all failures are returned joined.
func (e *Engine) OnStrokeSettled(src canvas.SampleProvider) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.refresh(src)
	e.notifyUpdate()
	return err
}

// OnClear disposes every handle first, then rebuilds from the (cleared)
// canvas. No new stats exist until disposal has finished.
func (e *Engine) OnClear(src canvas.SampleProvider) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lifecycle.DisposeAll()
	e.grid.Reset()
	err := e.refresh(src)
	e.notifyUpdate()
	return err
}

func (e *Engine) refresh(src canvas.SampleProvider) error {
	scans := e.grid.RescanAll(src)
	e.grid.Apply(scans)

	var errs []error
	for _, c := range e.grid.Cells() {
		p := pattern.Generate(c.Kind(), c.Stats, c.Quadrants, e.rng)
		e.patterns[c.ID] = p
		if err := e.reconcile(c, p); err != nil {
			debug.Log("engine", "cell=%d reconcile failed: %v", c.ID, err)
			errs = append(errs, err)
		}
	}
	debug.Log("engine", "refresh: %d cells, %d live", e.grid.Len(), e.lifecycle.LiveCount())
	return errors.Join(errs...)
}

// reconcile turns a panic inside one cell's reconciliation into an error
func (e *Engine) reconcile(c *grid.Cell, p pattern.Pattern) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = fmt.Errorf("cell %d: %w", c.ID, rerr)
				return
			}
			err = fmt.Errorf("cell %d: %v", c.ID, r)
		}
	}()
	debug.Log("cell", "cell=%d %s shaded=%d dominant=%d: %s", c.ID, c.Instrument, c.Stats.Shaded, c.Stats.Dominant, p)
	e.lifecycle.Reconcile(c.ID, c.Instrument, p)
	return nil
}

// Snapshot returns the current state of every cell
func (e *Engine) Snapshot() []CellView {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]CellView, 0, e.grid.Len())
	for _, c := range e.grid.Cells() {
		out = append(out, CellView{
			ID:         c.ID,
			Row:        c.Row,
			Col:        c.Col,
			Instrument: c.Instrument,
			Stats:      c.Stats,
			Quadrants:  c.Quadrants,
			Pattern:    e.patterns[c.ID].Clone(),
			Live:       e.lifecycle.Handle(c.ID) != nil,
		})
	}
	return out
}

// Shutdown disposes every handle (process teardown)
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lifecycle.DisposeAll()
}

// notifyUpdate pokes the UI without blocking
func (e *Engine) notifyUpdate() {
	select {
	case e.UpdateChan <- struct{}{}:
	default:
	}
}
