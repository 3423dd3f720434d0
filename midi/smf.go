package midi

import (
	"fmt"
	"io"
	"slices"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-synesthesia/debug"
	"go-synesthesia/grid"
	"go-synesthesia/pattern"
	"go-synesthesia/sequencer"
)

// Voice is one cell's pattern to export
type Voice struct {
	Cell       grid.CellID
	Instrument pattern.Instrument
	Pattern    pattern.Pattern
}

// Export is one loop of every sounding cell
type Export struct {
	Tempo  float64
	Loop   sequencer.Ticks
	Voices []Voice
}

// Render lays one loop of a voice out as note events, the same way a
// live handle would play it
func Render(v Voice, loop sequencer.Ticks, opts Options) ([]Event, error) {
	n := v.Pattern.Len()
	if n == 0 || loop <= 0 {
		return nil, nil
	}
	interval, err := sequencer.ParseNotation(v.Instrument.Subdivision())
	if err != nil {
		return nil, err
	}

	ch := opts.channel(v.Instrument)
	vel := opts.velocity(v.Instrument)
	var events []Event
	var errs []error

	for step := int64(0); sequencer.Ticks(step)*interval < loop; step++ {
		slot := v.Pattern.Slots[step%int64(n)]
		hits := slot.Hits()
		if hits == 0 {
			continue
		}
		pitches := []pattern.Pitch{slot.Pitch}
		if v.Pattern.Kind == pattern.Pad {
			pitches = pattern.Chord(slot.Pitch)
		}

		start := sequencer.Ticks(step) * interval
		each := interval / sequencer.Ticks(hits)
		for h := 0; h < hits; h++ {
			at := start + each*sequencer.Ticks(h)
			for _, p := range pitches {
				key, err := opts.key(v.Instrument, p)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				events = append(events,
					Event{Tick: int64(at), Type: NoteOn, Channel: ch, Note: key, Velocity: vel},
					Event{Tick: int64(at + each), Type: NoteOff, Channel: ch, Note: key},
				)
			}
		}
	}

	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case a.before(b):
			return -1
		case b.before(a):
			return 1
		}
		return 0
	})
	if len(errs) > 0 {
		debug.Log("midi", "cell=%d: %d unplayable notes", v.Cell, len(errs))
		return events, fmt.Errorf("cell %d: %w", v.Cell, errs[0])
	}
	return events, nil
}

// WriteSMF writes exp as a format 1 Standard MIDI File: a conductor track
// with tempo and meter, then one track per voice
func WriteSMF(w io.Writer, exp Export, opts Options) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(sequencer.PPQ)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTempo(exp.Tempo))
	conductor.Add(0, smf.MetaMeter(sequencer.BeatsPerBar, 4))
	conductor.Close(uint32(exp.Loop))
	if err := s.Add(conductor); err != nil {
		return fmt.Errorf("add conductor track: %w", err)
	}

	for _, v := range exp.Voices {
		events, err := Render(v, exp.Loop, opts)
		if err != nil {
			return err
		}

		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("cell %d %s", v.Cell, v.Instrument)))
		var last int64
		for _, ev := range events {
			track.Add(uint32(ev.Tick-last), ev.Message())
			last = ev.Tick
		}
		// pad the track to the full loop so it repeats cleanly
		track.Close(uint32(max(int64(exp.Loop)-last, 0)))
		if err := s.Add(track); err != nil {
			return fmt.Errorf("add track for cell %d: %w", v.Cell, err)
		}
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	debug.Log("midi", "wrote %d voices, %d ticks at %.0f bpm", len(exp.Voices), exp.Loop, exp.Tempo)
	return nil
}
