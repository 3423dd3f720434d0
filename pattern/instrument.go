package pattern

// VoiceKind is the musical behavior of a cell
type VoiceKind int

const (
	Rhythmic VoiceKind = iota // one burst per quadrant
	Arpeggio                  // 8-step broken triad
	Pad                       // one sustained chord per loop
)

// Len returns how many slots a pattern of this kind has
func (k VoiceKind) Len() int {
	switch k {
	case Rhythmic:
		return 4
	case Arpeggio:
		return 8
	case Pad:
		return 1
	}
	return 0
}

func (k VoiceKind) String() string {
	switch k {
	case Rhythmic:
		return "rhythmic"
	case Arpeggio:
		return "arpeggio"
	case Pad:
		return "pad"
	}
	return "unknown"
}

// Instrument is the sound a cell is wired to
type Instrument int

const (
	Kick Instrument = iota
	Snare
	HiHat
	Atmosphere
	Piano
	NumInstruments
)

type instrumentInfo struct {
	Name        string
	Kind        VoiceKind
	Subdivision string // transport notation, one slot per subdivision
}

// instruments is indexed by Instrument
var instruments = [NumInstruments]instrumentInfo{
	Kick:       {Name: "kick", Kind: Rhythmic, Subdivision: "2n"},
	Snare:      {Name: "snare", Kind: Rhythmic, Subdivision: "2n"},
	HiHat:      {Name: "hihat", Kind: Rhythmic, Subdivision: "4n"},
	Atmosphere: {Name: "atmosphere", Kind: Pad, Subdivision: "2m"},
	Piano:      {Name: "piano", Kind: Arpeggio, Subdivision: "4n"},
}

// InstrumentFor returns the fixed round-robin assignment for a cell index
func InstrumentFor(cell int) Instrument {
	if cell < 0 {
		cell = -cell
	}
	return Instrument(cell % int(NumInstruments))
}

// Kind returns the voice kind the instrument plays
func (i Instrument) Kind() VoiceKind {
	if !i.valid() {
		return Rhythmic
	}
	return instruments[i].Kind
}

// Subdivision returns the slot length in transport notation ("4n", "2m", ...)
func (i Instrument) Subdivision() string {
	if !i.valid() {
		return "4n"
	}
	return instruments[i].Subdivision
}

func (i Instrument) String() string {
	if !i.valid() {
		return "unknown"
	}
	return instruments[i].Name
}

// ParseInstrument looks an instrument up by name
func ParseInstrument(name string) (Instrument, bool) {
	for i, info := range instruments {
		if info.Name == name {
			return Instrument(i), true
		}
	}
	return 0, false
}

func (i Instrument) valid() bool {
	return i >= 0 && i < NumInstruments
}
