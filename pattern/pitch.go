package pattern

import (
	"fmt"
	"strconv"

	"go-synesthesia/palette"
)

// Octaves used by the generators
const (
	RhythmOctave   = 2 // drum bursts
	ArpeggioOctave = 3 // base; shaded%3 is added
	PadOctave      = 2
)

// Pitch is a note name plus octave, e.g. C#4
type Pitch struct {
	Letter string
	Octave int
}

func (p Pitch) String() string {
	return fmt.Sprintf("%s%d", p.Letter, p.Octave)
}

// ParsePitch parses names like "B2" or "F#-1"
func ParsePitch(s string) (Pitch, error) {
	if len(s) < 2 || s[0] < 'A' || s[0] > 'G' {
		return Pitch{}, fmt.Errorf("invalid pitch %q", s)
	}
	n := 1
	if s[1] == '#' {
		n = 2
	}
	oct, err := strconv.Atoi(s[n:])
	if err != nil {
		return Pitch{}, fmt.Errorf("invalid pitch %q: %w", s, err)
	}
	return Pitch{Letter: s[:n], Octave: oct}, nil
}

// Triad builds the diatonic triad (root, third, fifth) rooted on letter
// within the palette scale. Every note keeps the given octave number.
func Triad(letter string, octave int) ([3]Pitch, bool) {
	deg, ok := palette.Degree(letter)
	if !ok {
		return [3]Pitch{}, false
	}
	var out [3]Pitch
	for i := range out {
		out[i] = Pitch{Letter: palette.Scale[(deg+2*i)%len(palette.Scale)], Octave: octave}
	}
	return out, true
}

// Chord voices a pad note as its triad; unknown letters play alone
func Chord(p Pitch) []Pitch {
	t, ok := Triad(p.Letter, p.Octave)
	if !ok {
		return []Pitch{p}
	}
	return t[:]
}
