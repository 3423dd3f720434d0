package pattern

import "strings"

// SlotKind says what happens on a beat slot
type SlotKind int

const (
	Rest  SlotKind = iota // silence
	Note                  // one pitch
	Burst                 // same pitch Repeat times inside the slot
)

// Slot is one rhythmic subdivision of the loop
type Slot struct {
	Kind   SlotKind
	Pitch  Pitch
	Repeat int // Burst only
}

// Hits returns how many times the slot sounds
func (s Slot) Hits() int {
	switch s.Kind {
	case Note:
		return 1
	case Burst:
		return max(s.Repeat, 1)
	}
	return 0
}

func (s Slot) String() string {
	switch s.Kind {
	case Note:
		return s.Pitch.String()
	case Burst:
		parts := make([]string, s.Hits())
		for i := range parts {
			parts[i] = s.Pitch.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	}
	return "."
}

// Pattern is a fixed-length sequence of slots for one voice
type Pattern struct {
	Kind  VoiceKind
	Slots []Slot
}

// Silent returns the all-rest pattern for a kind
func Silent(kind VoiceKind) Pattern {
	return Pattern{Kind: kind, Slots: make([]Slot, kind.Len())}
}

// IsSilent reports whether no slot sounds
func (p Pattern) IsSilent() bool {
	for _, s := range p.Slots {
		if s.Kind != Rest {
			return false
		}
	}
	return true
}

// Len returns the slot count
func (p Pattern) Len() int {
	return len(p.Slots)
}

// Clone deep-copies the slot slice
func (p Pattern) Clone() Pattern {
	out := Pattern{Kind: p.Kind, Slots: make([]Slot, len(p.Slots))}
	copy(out.Slots, p.Slots)
	return out
}

// Pitches returns the distinct pitches used, in first-use order
func (p Pattern) Pitches() []Pitch {
	var out []Pitch
	seen := make(map[Pitch]bool)
	for _, s := range p.Slots {
		if s.Kind == Rest || seen[s.Pitch] {
			continue
		}
		seen[s.Pitch] = true
		out = append(out, s.Pitch)
	}
	return out
}

func (p Pattern) String() string {
	parts := make([]string, len(p.Slots))
	for i, s := range p.Slots {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}
