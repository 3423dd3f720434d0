package midi

import gomidi "gitlab.com/gomidi/midi/v2"

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// Event is a note-on or note-off placed on the tick timeline
type Event struct {
	Tick     int64
	Type     uint8 // NoteOn, NoteOff
	Channel  uint8 // 0-based
	Note     uint8
	Velocity uint8
}

// Message converts the event to a wire message
func (e Event) Message() gomidi.Message {
	if e.Type == NoteOff {
		return gomidi.NoteOff(e.Channel, e.Note)
	}
	return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
}

// before orders events by tick; at the same tick note-offs go first so a
// repeated key is released before it sounds again
func (e Event) before(o Event) bool {
	if e.Tick != o.Tick {
		return e.Tick < o.Tick
	}
	return e.Type == NoteOff && o.Type != NoteOff
}
