package midi

import (
	"errors"
	"fmt"

	"go-synesthesia/pattern"
)

// ErrBadPitch is returned for pitches with no MIDI key
var ErrBadPitch = errors.New("bad pitch")

// semitones above C for every letter the scale uses
var semitones = map[string]int{
	"C": 0, "C#": 1, "D": 2, "D#": 3, "E": 4, "F": 5,
	"F#": 6, "G": 7, "G#": 8, "A": 9, "A#": 10, "B": 11,
}

// NoteNumber maps a pitch to its MIDI key (C4 = 60)
func NoteNumber(p pattern.Pitch) (uint8, error) {
	st, ok := semitones[p.Letter]
	if !ok {
		return 0, fmt.Errorf("%w: unknown letter %q", ErrBadPitch, p.Letter)
	}
	n := (p.Octave+1)*12 + st
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("%w: %s out of range", ErrBadPitch, p)
	}
	return uint8(n), nil
}
