package sequencer

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"go-synesthesia/debug"
	"go-synesthesia/grid"
	"go-synesthesia/pattern"
)

// HandleState is where a handle is in its lifecycle
type HandleState int32

const (
	HandleAbsent   HandleState = iota // created, nothing installed
	HandleLive                        // scheduled and playing
	HandleStopping                    // dispose in progress: callbacks no-op
	HandleDisposed                    // unscheduled for good
)

func (s HandleState) String() string {
	switch s {
	case HandleAbsent:
		return "absent"
	case HandleLive:
		return "live"
	case HandleStopping:
		return "stopping"
	case HandleDisposed:
		return "disposed"
	}
	return "unknown"
}

// Handle is a cell's playing voice. Its identity is stable for as long as
// the cell stays painted; content changes go through Replace.
type Handle struct {
	ID         uuid.UUID
	Cell       grid.CellID
	Instrument pattern.Instrument

	transport Transport
	player    Player
	interval  Ticks
	schedule  ScheduleID

	content atomic.Pointer[pattern.Pattern]
	state   atomic.Int32
}

// NewHandle creates an absent handle for a cell's instrument
func NewHandle(cell grid.CellID, inst pattern.Instrument, transport Transport, player Player) *Handle {
	interval, err := ParseNotation(inst.Subdivision())
	if err != nil {
		debug.Log("handle", "cell=%d bad subdivision %q: %v", cell, inst.Subdivision(), err)
		interval = PPQ
	}
	return &Handle{
		ID:         uuid.New(),
		Cell:       cell,
		Instrument: inst,
		transport:  transport,
		player:     player,
		interval:   interval,
	}
}

// Install sets the first pattern and registers with the transport. Slots
// line up with the top of the loop, so playback joins at the next slot
// boundary rather than immediately.
func (h *Handle) Install(p pattern.Pattern) {
	if h.State() != HandleAbsent {
		h.Replace(p)
		return
	}
	c := p.Clone()
	h.content.Store(&c)
	h.state.Store(int32(HandleLive))
	h.schedule = h.transport.Schedule(h.interval, h.fire)
	debug.Log("handle", "install %s cell=%d %s every %d ticks: %s", h.ID, h.Cell, h.Instrument, h.interval, c)
}

// Replace swaps the pattern in one atomic store; the scheduled callback
// sees either the old pattern or the new one, never a mix.
func (h *Handle) Replace(p pattern.Pattern) {
	if h.State() != HandleLive {
		return
	}
	c := p.Clone()
	h.content.Store(&c)
	debug.Log("handle", "replace %s cell=%d: %s", h.ID, h.Cell, c)
}

// Dispose stops playback. Once it returns no callback for this handle
// will fire again, and a Silencer player has dropped the cell's notes.
func (h *Handle) Dispose() {
	if !h.state.CompareAndSwap(int32(HandleLive), int32(HandleStopping)) {
		h.state.Store(int32(HandleDisposed))
		return
	}
	h.transport.Clear(h.schedule)
	if s, ok := h.player.(Silencer); ok {
		s.Silence(h.Cell)
	}
	h.content.Store(nil)
	h.state.Store(int32(HandleDisposed))
	debug.Log("handle", "dispose %s cell=%d", h.ID, h.Cell)
}

// Pattern returns the installed content (zero Pattern when none)
func (h *Handle) Pattern() pattern.Pattern {
	if p := h.content.Load(); p != nil {
		return *p
	}
	return pattern.Pattern{}
}

// State returns the lifecycle state
func (h *Handle) State() HandleState {
	return HandleState(h.state.Load())
}

// Live reports whether the handle is scheduled and playing
func (h *Handle) Live() bool {
	return h.State() == HandleLive
}

// fire is the transport callback: play whatever slot is current
func (h *Handle) fire(step Step) {
	if h.State() != HandleLive {
		return
	}
	p := h.content.Load()
	if p == nil || len(p.Slots) == 0 {
		return
	}
	slot := p.Slots[step.Index%int64(len(p.Slots))]

	hits := slot.Hits()
	if hits == 0 {
		return
	}
	pitches := []pattern.Pitch{slot.Pitch}
	if p.Kind == pattern.Pad {
		pitches = pattern.Chord(slot.Pitch)
	}

	// a burst splits the slot evenly
	each := step.Duration / time.Duration(hits)
	for i := 0; i < hits; i++ {
		h.player.Play(NoteEvent{
			Cell:       h.Cell,
			Instrument: h.Instrument,
			Pitches:    pitches,
			At:         step.At.Add(each * time.Duration(i)),
			Duration:   each,
		})
	}
}
