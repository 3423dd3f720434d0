package midi

import (
	"sort"

	"go-synesthesia/pattern"
)

// DrumKit maps the rhythmic instruments onto fixed drum-machine keys.
// With a kit selected, kick/snare/hihat ignore their pitch and hit the
// kit's key instead.
type DrumKit struct {
	Name  string
	Notes map[pattern.Instrument]uint8
}

// Kits contains all available drum kit mappings
var Kits = map[string]DrumKit{
	"gm": {
		Name:  "General MIDI",
		Notes: map[pattern.Instrument]uint8{pattern.Kick: 36, pattern.Snare: 38, pattern.HiHat: 42},
	},
	"rd8": {
		Name:  "Behringer RD-8",
		Notes: map[pattern.Instrument]uint8{pattern.Kick: 36, pattern.Snare: 40, pattern.HiHat: 42}, // RD-8 snare is 40, not 38
	},
	"tr8s": {
		Name:  "Roland TR-8S",
		Notes: map[pattern.Instrument]uint8{pattern.Kick: 36, pattern.Snare: 38, pattern.HiHat: 42},
	},
	"er1": {
		Name:  "Korg ER-1",
		Notes: map[pattern.Instrument]uint8{pattern.Kick: 36, pattern.Snare: 38, pattern.HiHat: 42},
	},
}

// KitNames returns the available kit names, sorted
func KitNames() []string {
	names := make([]string, 0, len(Kits))
	for name := range Kits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupKit returns a kit by name. The empty name means "pitched drums".
func LookupKit(name string) (DrumKit, bool) {
	kit, ok := Kits[name]
	return kit, ok
}
