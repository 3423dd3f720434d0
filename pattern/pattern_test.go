package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-synesthesia/histogram"
	"go-synesthesia/palette"
)

// stats builds region stats holding n pixels of the named color
func stats(t *testing.T, name string, n int) histogram.Stats {
	t.Helper()
	s := histogram.Empty()
	if n == 0 {
		return s
	}
	c, ok := palette.ByName(name)
	require.True(t, ok, name)
	s.Counts[c.ID] = n
	s.Shaded = n
	s.Dominant = c.ID
	return s
}

func TestUnshadedCellIsSilent(t *testing.T) {
	rng := NewRand(1)
	for _, kind := range []VoiceKind{Rhythmic, Arpeggio, Pad} {
		t.Run(kind.String(), func(t *testing.T) {
			p := Generate(kind, histogram.Empty(), [4]histogram.Stats{}, rng)
			assert.True(t, p.IsSilent())
			assert.Equal(t, kind.Len(), p.Len())
			assert.Equal(t, kind, p.Kind)
		})
	}
}

func TestBrokenInvariantIsSilent(t *testing.T) {
	cell := histogram.Stats{Shaded: 10, Dominant: palette.None}
	for _, kind := range []VoiceKind{Rhythmic, Arpeggio, Pad} {
		p := Generate(kind, cell, [4]histogram.Stats{cell, cell, cell, cell}, NewRand(3))
		assert.True(t, p.IsSilent(), kind.String())
	}
}

func TestRhythmAllQuadrantsSameColor(t *testing.T) {
	counts := [4]int{100, 101, 102, 9999}
	var quads [4]histogram.Stats
	total := 0
	for i, n := range counts {
		quads[i] = stats(t, "blue", n)
		total += n
	}

	p := Generate(Rhythmic, stats(t, "blue", total), quads, nil)
	require.Equal(t, 4, p.Len())
	for i, s := range p.Slots {
		assert.Equal(t, Burst, s.Kind)
		assert.Equal(t, Pitch{Letter: "E", Octave: RhythmOctave}, s.Pitch)
		assert.Equal(t, counts[i]%3+1, s.Repeat)
		assert.GreaterOrEqual(t, s.Repeat, 1)
		assert.LessOrEqual(t, s.Repeat, 3)
	}
}

func TestRhythmWhiteScenario(t *testing.T) {
	// 12,000 white pixels all in one quadrant
	quads := [4]histogram.Stats{stats(t, "white", 12000), histogram.Empty(), histogram.Empty(), histogram.Empty()}
	p := Generate(Rhythmic, stats(t, "white", 12000), quads, nil)

	require.Equal(t, 4, p.Len())
	assert.Equal(t, Slot{Kind: Burst, Pitch: Pitch{Letter: "B", Octave: 2}, Repeat: 1}, p.Slots[0])
	for _, s := range p.Slots[1:] {
		assert.Equal(t, Rest, s.Kind)
	}
}

func TestRhythmUsesCellColor(t *testing.T) {
	// a little red in the top-left, mostly white bottom-right: every
	// painted quadrant plays the cell's white
	cell := stats(t, "white", 500)
	red, _ := palette.ByName("red")
	cell.Counts[red.ID] = 10
	cell.Shaded = 510

	quads := [4]histogram.Stats{
		stats(t, "red", 10),
		histogram.Empty(),
		histogram.Empty(),
		stats(t, "white", 500),
	}
	p := Generate(Rhythmic, cell, quads, nil)
	assert.Equal(t, "[B2 B2] . . [B2 B2 B2]", p.String())
}

func TestArpeggioShape(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		p := Generate(Arpeggio, stats(t, "orange", 7), [4]histogram.Stats{}, NewRand(seed))
		require.Equal(t, 8, p.Len())

		// orange is G: triad G B D, octave 7%3+3 = 4
		want := map[Pitch]bool{{"G", 4}: true, {"B", 4}: true, {"D", 4}: true}
		for i, s := range p.Slots {
			if s.Kind == Rest {
				continue
			}
			assert.True(t, want[s.Pitch], "slot %d pitch %s", i, s.Pitch)
			triad, _ := Triad("G", 4)
			assert.Equal(t, triad[arpeggioOrder[i]], s.Pitch)
			if s.Kind == Burst {
				assert.Equal(t, 7%3+1, s.Repeat)
			}
		}
	}
}

func TestArpeggioSeedIsReproducible(t *testing.T) {
	cell := stats(t, "green", 1234)
	a := Generate(Arpeggio, cell, [4]histogram.Stats{}, NewRand(42))
	b := Generate(Arpeggio, cell, [4]histogram.Stats{}, NewRand(42))
	assert.Equal(t, a, b)
}

func TestArpeggioCoversAllOutcomes(t *testing.T) {
	rng := NewRand(7)
	seen := map[SlotKind]bool{}
	for i := 0; i < 50; i++ {
		for _, s := range Generate(Arpeggio, stats(t, "white", 5), [4]histogram.Stats{}, rng).Slots {
			seen[s.Kind] = true
		}
	}
	assert.True(t, seen[Rest])
	assert.True(t, seen[Note])
	assert.True(t, seen[Burst])
}

func TestPad(t *testing.T) {
	p := Generate(Pad, stats(t, "brown", 50), [4]histogram.Stats{}, nil)
	require.Equal(t, 1, p.Len())
	assert.Equal(t, Slot{Kind: Note, Pitch: Pitch{Letter: "A", Octave: PadOctave}}, p.Slots[0])
	assert.Equal(t, []Pitch{{"A", 2}, {"C#", 2}, {"E", 2}}, Chord(p.Slots[0].Pitch))
}

func TestTriad(t *testing.T) {
	tests := []struct {
		letter string
		want   [3]string
	}{
		{"B", [3]string{"B", "D", "F#"}},
		{"C#", [3]string{"C#", "E", "G"}},
		{"D", [3]string{"D", "F#", "A"}},
		{"E", [3]string{"E", "G", "B"}},
		{"F#", [3]string{"F#", "A", "C#"}},
		{"G", [3]string{"G", "B", "D"}},
		{"A", [3]string{"A", "C#", "E"}},
	}
	for _, tt := range tests {
		t.Run(tt.letter, func(t *testing.T) {
			triad, ok := Triad(tt.letter, 3)
			require.True(t, ok)
			for i, p := range triad {
				assert.Equal(t, tt.want[i], p.Letter)
				assert.Equal(t, 3, p.Octave)
			}
		})
	}

	_, ok := Triad("C", 3)
	assert.False(t, ok)
	assert.Equal(t, []Pitch{{"C", 1}}, Chord(Pitch{"C", 1}))
}

func TestParsePitch(t *testing.T) {
	tests := []struct {
		in      string
		want    Pitch
		wantErr bool
	}{
		{"B2", Pitch{"B", 2}, false},
		{"C#4", Pitch{"C#", 4}, false},
		{"F#-1", Pitch{"F#", -1}, false},
		{"H2", Pitch{}, true},
		{"C#", Pitch{}, true},
		{"", Pitch{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePitch(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestPatternHelpers(t *testing.T) {
	p := Pattern{Kind: Rhythmic, Slots: []Slot{
		{Kind: Burst, Pitch: Pitch{"B", 2}, Repeat: 2},
		{},
		{Kind: Note, Pitch: Pitch{"B", 2}},
		{Kind: Note, Pitch: Pitch{"D", 2}},
	}}
	assert.False(t, p.IsSilent())
	assert.Equal(t, []Pitch{{"B", 2}, {"D", 2}}, p.Pitches())
	assert.Equal(t, 2, p.Slots[0].Hits())
	assert.Equal(t, 0, p.Slots[1].Hits())

	c := p.Clone()
	c.Slots[0].Repeat = 3
	assert.Equal(t, 2, p.Slots[0].Repeat)
}

func TestInstrumentTable(t *testing.T) {
	want := []Instrument{Kick, Snare, HiHat, Atmosphere, Piano, Kick, Snare}
	for cell, inst := range want {
		assert.Equal(t, inst, InstrumentFor(cell))
	}
	assert.Equal(t, Rhythmic, HiHat.Kind())
	assert.Equal(t, Pad, Atmosphere.Kind())
	assert.Equal(t, Arpeggio, Piano.Kind())
	assert.Equal(t, "2m", Atmosphere.Subdivision())

	inst, ok := ParseInstrument("piano")
	require.True(t, ok)
	assert.Equal(t, Piano, inst)
	_, ok = ParseInstrument("tuba")
	assert.False(t, ok)
}
