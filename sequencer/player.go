package sequencer

import (
	"time"

	"go-synesthesia/debug"
	"go-synesthesia/grid"
	"go-synesthesia/pattern"
)

// NoteEvent is one sounding of a slot. Pitches holds more than one entry
// when a pad is voiced as a chord.
type NoteEvent struct {
	Cell       grid.CellID
	Instrument pattern.Instrument
	Pitches    []pattern.Pitch
	At         time.Time
	Duration   time.Duration
}

// Player turns note events into sound. Implementations must not call back
// into the Transport: Play runs on the clock's callback path.
type Player interface {
	Play(ev NoteEvent)
}

// Silencer is implemented by players that keep notes queued or sounding
// after Play returns. A disposed handle calls Silence for its cell, and
// nothing queued for that cell may sound afterwards.
type Silencer interface {
	Silence(cell grid.CellID)
}

// PlayerFunc adapts a function to Player
type PlayerFunc func(NoteEvent)

// Play implements Player
func (f PlayerFunc) Play(ev NoteEvent) { f(ev) }

// LogPlayer only writes events to the debug log (headless runs)
type LogPlayer struct{}

// Play implements Player
func (LogPlayer) Play(ev NoteEvent) {
	debug.LogEvery(16, "play", "cell=%d %s %v dur=%s", ev.Cell, ev.Instrument, ev.Pitches, ev.Duration)
}
