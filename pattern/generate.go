package pattern

import (
	"math/rand/v2"
	"time"

	"go-synesthesia/histogram"
	"go-synesthesia/palette"
)

// arpeggioOrder walks the triad across the 8 arpeggio slots
var arpeggioOrder = [8]int{0, 1, 2, 0, 1, 2, 0, 1}

// NewRand returns a generator for arpeggio variation. Seed 0 means
// "different every run".
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1^0x9e3779b97f4a7c15))
}

// Generate derives a cell's pattern from its region stats.
// rng only affects Arpeggio voices.
func Generate(kind VoiceKind, cell histogram.Stats, quads [4]histogram.Stats, rng *rand.Rand) Pattern {
	if cell.Shaded == 0 {
		return Silent(kind)
	}
	root, ok := cell.DominantColor()
	if !ok {
		// paint without a dominant color breaks the histogram invariant;
		// play nothing rather than fail
		return Silent(kind)
	}

	switch kind {
	case Rhythmic:
		return rhythm(root, quads)
	case Arpeggio:
		return arpeggio(root, cell.Shaded, rng)
	case Pad:
		return Pattern{Kind: Pad, Slots: []Slot{{Kind: Note, Pitch: Pitch{Letter: root.Letter, Octave: PadOctave}}}}
	}
	return Silent(kind)
}

// repeats maps a pixel count onto a burst size of 1-3
func repeats(shaded int) int {
	return shaded%3 + 1
}

// rhythm plays the cell's dominant color in every painted quadrant; the
// quadrant only decides whether its slot sounds and how many hits it gets
func rhythm(root palette.Color, quads [4]histogram.Stats) Pattern {
	p := Silent(Rhythmic)
	for i, q := range quads {
		if q.Shaded == 0 {
			continue
		}
		p.Slots[i] = Slot{
			Kind:   Burst,
			Pitch:  Pitch{Letter: root.Letter, Octave: RhythmOctave},
			Repeat: repeats(q.Shaded),
		}
	}
	return p
}

func arpeggio(root palette.Color, shaded int, rng *rand.Rand) Pattern {
	triad, ok := Triad(root.Letter, shaded%3+ArpeggioOctave)
	if !ok {
		return Silent(Arpeggio)
	}
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}

	p := Silent(Arpeggio)
	for i, idx := range arpeggioOrder {
		pitch := triad[idx]
		switch intN(3) {
		case 0:
			// rest
		case 1:
			p.Slots[i] = Slot{Kind: Burst, Pitch: pitch, Repeat: repeats(shaded)}
		default:
			p.Slots[i] = Slot{Kind: Note, Pitch: pitch}
		}
	}
	return p
}
