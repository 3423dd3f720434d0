package sequencer

import (
	"errors"
	"fmt"

	"go-synesthesia/debug"
	"go-synesthesia/grid"
	"go-synesthesia/pattern"
)

// ErrUnknownCell means the lifecycle table and the grid disagree
var ErrUnknownCell = errors.New("unknown cell")

// Lifecycle keeps at most one live Handle per cell
type Lifecycle struct {
	transport Transport
	player    Player
	handles   []*Handle // indexed by CellID; nil = no live handle
}

// NewLifecycle creates an empty table for a grid of n cells
func NewLifecycle(n int, transport Transport, player Player) *Lifecycle {
	if player == nil {
		player = LogPlayer{}
	}
	return &Lifecycle{
		transport: transport,
		player:    player,
		handles:   make([]*Handle, n),
	}
}

// Reconcile brings a cell's handle in line with its freshly generated
// pattern:
//
//	no handle + sound   -> create, install, go live
//	live      + sound   -> replace content in place
//	live      + silence -> dispose, forget
//	no handle + silence -> nothing
//
// An id outside the table is a programming error and panics with
// ErrUnknownCell.
func (l *Lifecycle) Reconcile(id grid.CellID, inst pattern.Instrument, p pattern.Pattern) {
	if id < 0 || int(id) >= len(l.handles) {
		panic(fmt.Errorf("%w: %d (table has %d cells)", ErrUnknownCell, id, len(l.handles)))
	}

	h := l.handles[id]
	silent := p.IsSilent()

	switch {
	case h == nil && silent:
		return
	case h == nil:
		h = NewHandle(id, inst, l.transport, l.player)
		l.handles[id] = h
		defer func() {
			if r := recover(); r != nil {
				// don't leave a half-installed handle behind
				h.Dispose()
				l.handles[id] = nil
				panic(r)
			}
		}()
		h.Install(p)
	case silent:
		h.Dispose()
		l.handles[id] = nil
	default:
		h.Replace(p)
	}
}

// DisposeAll stops every live handle
func (l *Lifecycle) DisposeAll() {
	n := 0
	for i, h := range l.handles {
		if h == nil {
			continue
		}
		h.Dispose()
		l.handles[i] = nil
		n++
	}
	debug.Log("engine", "disposed %d handles", n)
}

// Handle returns the cell's live handle, or nil
func (l *Lifecycle) Handle(id grid.CellID) *Handle {
	if id < 0 || int(id) >= len(l.handles) {
		return nil
	}
	return l.handles[id]
}

// LiveCount returns how many cells currently have a handle
func (l *Lifecycle) LiveCount() int {
	n := 0
	for _, h := range l.handles {
		if h != nil {
			n++
		}
	}
	return n
}

// Len returns the table size
func (l *Lifecycle) Len() int {
	return len(l.handles)
}
