package midi

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-synesthesia/pattern"
	"go-synesthesia/sequencer"
)

func TestNoteNumber(t *testing.T) {
	tests := []struct {
		pitch   pattern.Pitch
		want    uint8
		wantErr bool
	}{
		{pattern.Pitch{Letter: "C", Octave: 4}, 60, false},
		{pattern.Pitch{Letter: "A", Octave: 4}, 69, false},
		{pattern.Pitch{Letter: "B", Octave: 2}, 47, false},
		{pattern.Pitch{Letter: "C#", Octave: 2}, 37, false},
		{pattern.Pitch{Letter: "F#", Octave: 3}, 54, false},
		{pattern.Pitch{Letter: "C", Octave: -1}, 0, false},
		{pattern.Pitch{Letter: "G", Octave: 9}, 127, false},
		{pattern.Pitch{Letter: "A", Octave: 9}, 0, true},
		{pattern.Pitch{Letter: "H", Octave: 4}, 0, true},
		{pattern.Pitch{Letter: "", Octave: 4}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.pitch.String(), func(t *testing.T) {
			got, err := NoteNumber(tt.pitch)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadPitch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionsKey(t *testing.T) {
	b2 := pattern.Pitch{Letter: "B", Octave: 2}
	opts := DefaultOptions()

	key, err := opts.key(pattern.Snare, b2)
	require.NoError(t, err)
	assert.Equal(t, uint8(47), key, "pitched drums")

	opts.Kit = "rd8"
	key, err = opts.key(pattern.Snare, b2)
	require.NoError(t, err)
	assert.Equal(t, uint8(40), key)

	// melodic voices ignore the kit
	key, err = opts.key(pattern.Piano, b2)
	require.NoError(t, err)
	assert.Equal(t, uint8(47), key)

	assert.Equal(t, []string{"er1", "gm", "rd8", "tr8s"}, KitNames())
}

type fakePort struct {
	mu   sync.Mutex
	sent []gomidi.Message
	err  error
}

func (f *fakePort) send(msg gomidi.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func syncOutput(port *fakePort, opts Options) (*Output, *[]time.Duration) {
	o := NewOutput(port.send, opts)
	var delays []time.Duration
	o.afterFunc = func(d time.Duration, f func()) func() bool {
		delays = append(delays, d)
		f()
		return func() bool { return false }
	}
	return o, &delays
}

func (f *fakePort) count() (ons, offs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, msg := range f.sent {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			ons++
		case msg.GetNoteEnd(&ch, &key):
			offs++
		}
	}
	return ons, offs
}

// manualTimer is a queued afterFunc call that a test fires by hand
type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

type manualTimers struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (m *manualTimers) after(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	m.timers = append(m.timers, t)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		active := !t.stopped && !t.fired
		t.stopped = true
		return active
	}
}

// fireUntil runs every live timer due within d
func (m *manualTimers) fireUntil(d time.Duration) {
	m.mu.Lock()
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired && t.d <= d {
			t.fired = true
			due = append(due, t)
		}
	}
	m.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

func TestOutputSilenceCancelsPending(t *testing.T) {
	port := &fakePort{}
	o := NewOutput(port.send, DefaultOptions())
	timers := &manualTimers{}
	o.afterFunc = timers.after

	// a three-hit kick burst on cell 0 and a piano note on cell 4
	now := time.Now()
	for i := 0; i < 3; i++ {
		o.Play(sequencer.NoteEvent{
			Cell:       0,
			Instrument: pattern.Kick,
			Pitches:    []pattern.Pitch{{Letter: "B", Octave: 2}},
			At:         now.Add(time.Duration(i) * 200 * time.Millisecond),
			Duration:   200 * time.Millisecond,
		})
	}
	o.Play(sequencer.NoteEvent{
		Cell:       4,
		Instrument: pattern.Piano,
		Pitches:    []pattern.Pitch{{Letter: "D", Octave: 4}},
		At:         now,
		Duration:   time.Second,
	})

	// first hits sound
	timers.fireUntil(50 * time.Millisecond)
	ons, offs := port.count()
	require.Equal(t, 2, ons)
	require.Equal(t, 0, offs)

	o.Silence(0)
	ons, offs = port.count()
	assert.Equal(t, 2, ons)
	assert.Equal(t, 1, offs, "the sounding kick is released at once")

	// the rest of the burst never plays; the piano still ends normally
	timers.fireUntil(time.Hour)
	ons, offs = port.count()
	assert.Equal(t, 2, ons)
	assert.Equal(t, 2, offs)

	// silencing a cell with nothing queued sends nothing
	o.Silence(0)
	o.Silence(9)
	_, offs = port.count()
	assert.Equal(t, 2, offs)
}

func TestOutputCloseReleasesSounding(t *testing.T) {
	port := &fakePort{}
	o := NewOutput(port.send, DefaultOptions())
	timers := &manualTimers{}
	o.afterFunc = timers.after

	o.Play(sequencer.NoteEvent{
		Cell:       3,
		Instrument: pattern.Atmosphere,
		Pitches:    pattern.Chord(pattern.Pitch{Letter: "E", Octave: 2}),
		At:         time.Now(),
		Duration:   5 * time.Second,
	})
	timers.fireUntil(50 * time.Millisecond)
	require.NoError(t, o.Close())

	ons, offs := port.count()
	assert.Equal(t, 3, ons)
	assert.Equal(t, 3, offs)

	timers.fireUntil(time.Hour)
	_, offs = port.count()
	assert.Equal(t, 3, offs)
}

func TestOutputPlay(t *testing.T) {
	port := &fakePort{}
	o, delays := syncOutput(port, DefaultOptions())

	o.Play(sequencer.NoteEvent{
		Instrument: pattern.Piano,
		Pitches:    []pattern.Pitch{{Letter: "D", Octave: 4}},
		At:         time.Now(),
		Duration:   250 * time.Millisecond,
	})

	require.Len(t, port.sent, 2)
	var ch, key, vel uint8
	require.True(t, port.sent[0].GetNoteStart(&ch, &key, &vel))
	assert.Equal(t, uint8(0), ch)
	assert.Equal(t, uint8(62), key)
	assert.Equal(t, uint8(100), vel)
	require.True(t, port.sent[1].GetNoteEnd(&ch, &key))
	assert.Equal(t, uint8(62), key)

	require.Len(t, *delays, 2)
	assert.InDelta(t, 250*time.Millisecond, (*delays)[1]-(*delays)[0], float64(time.Millisecond))
}

func TestOutputChordAndDrums(t *testing.T) {
	port := &fakePort{}
	o, _ := syncOutput(port, DefaultOptions())

	o.Play(sequencer.NoteEvent{
		Instrument: pattern.Atmosphere,
		Pitches:    pattern.Chord(pattern.Pitch{Letter: "B", Octave: 2}),
		At:         time.Now(),
		Duration:   time.Second,
	})
	assert.Len(t, port.sent, 6)

	port.sent = nil
	o.Play(sequencer.NoteEvent{
		Instrument: pattern.Kick,
		Pitches:    []pattern.Pitch{{Letter: "E", Octave: 2}},
		At:         time.Now(),
	})
	var ch, key, vel uint8
	require.True(t, port.sent[0].GetNoteStart(&ch, &key, &vel))
	assert.Equal(t, uint8(2), ch)
	assert.Equal(t, uint8(64), vel)
}

func TestOutputSkipsBadPitch(t *testing.T) {
	port := &fakePort{err: errors.New("port gone")}
	o, _ := syncOutput(port, DefaultOptions())

	o.Play(sequencer.NoteEvent{
		Instrument: pattern.Piano,
		Pitches:    []pattern.Pitch{{Letter: "X", Octave: 4}, {Letter: "B", Octave: 3}},
		At:         time.Now(),
	})
	// the good pitch still goes out; send errors are only logged
	assert.Len(t, port.sent, 2)
}

func TestOutputClose(t *testing.T) {
	port := &fakePort{}
	o, _ := syncOutput(port, DefaultOptions())
	closed := false
	o.close = func() error { closed = true; return nil }

	o.Play(sequencer.NoteEvent{Instrument: pattern.Piano, Pitches: []pattern.Pitch{{Letter: "B", Octave: 3}}, At: time.Now()})
	port.sent = nil
	require.NoError(t, o.Close())
	assert.True(t, closed)

	require.Len(t, port.sent, 1)
	var ch, cc, val uint8
	require.True(t, port.sent[0].GetControlChange(&ch, &cc, &val))
	assert.Equal(t, uint8(123), cc)
}

func TestMatchPort(t *testing.T) {
	names := []string{"Midi Through Port-0", "IAC Driver Bus 1", "FluidSynth virtual port"}

	i, ok := matchPort(names, "IAC Driver Bus 1")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = matchPort(names, "fluidsynth")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	i, ok = matchPort(names, "")
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	_, ok = matchPort(names, "launchpad")
	assert.False(t, ok)
	_, ok = matchPort(nil, "")
	assert.False(t, ok)
}

func drumVoice() Voice {
	p := pattern.Silent(pattern.Rhythmic)
	p.Slots[0] = pattern.Slot{Kind: pattern.Burst, Pitch: pattern.Pitch{Letter: "B", Octave: 2}, Repeat: 3}
	p.Slots[2] = pattern.Slot{Kind: pattern.Burst, Pitch: pattern.Pitch{Letter: "D", Octave: 2}, Repeat: 1}
	return Voice{Cell: 2, Instrument: pattern.HiHat, Pattern: p}
}

func TestRenderBursts(t *testing.T) {
	events, err := Render(drumVoice(), sequencer.Bars(1), DefaultOptions())
	require.NoError(t, err)

	var onTicks []int64
	for _, ev := range events {
		if ev.Type == NoteOn {
			onTicks = append(onTicks, ev.Tick)
		}
	}
	// three hits inside the first quarter, one on beat three
	assert.Equal(t, []int64{0, 32, 64, 192}, onTicks)

	// at tick 32 the first hit is released before the second starts
	for i, ev := range events {
		if ev.Tick == 32 {
			assert.Equal(t, NoteOff, ev.Type)
			assert.Equal(t, NoteOn, events[i+1].Type)
			break
		}
	}
}

func TestRenderCyclesOverLoop(t *testing.T) {
	// a 4-slot quarter-note pattern over two bars plays twice
	events, err := Render(drumVoice(), sequencer.Bars(2), DefaultOptions())
	require.NoError(t, err)
	ons := 0
	for _, ev := range events {
		if ev.Type == NoteOn {
			ons++
		}
	}
	assert.Equal(t, 8, ons)

	events, err = Render(Voice{Instrument: pattern.Piano}, sequencer.Bars(2), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRenderPadChord(t *testing.T) {
	v := Voice{
		Cell:       3,
		Instrument: pattern.Atmosphere,
		Pattern:    pattern.Pattern{Kind: pattern.Pad, Slots: []pattern.Slot{{Kind: pattern.Note, Pitch: pattern.Pitch{Letter: "E", Octave: 2}}}},
	}
	events, err := Render(v, sequencer.Bars(2), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, events, 6)
	for _, ev := range events[:3] {
		assert.Equal(t, int64(0), ev.Tick)
	}
	for _, ev := range events[3:] {
		assert.Equal(t, int64(sequencer.Bars(2)), ev.Tick)
	}
}

func TestWriteSMFRoundTrip(t *testing.T) {
	exp := Export{
		Tempo:  sequencer.DefaultTempo,
		Loop:   sequencer.Bars(sequencer.DefaultLoopBars),
		Voices: []Voice{drumVoice()},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSMF(&buf, exp, DefaultOptions()))

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 2)

	mt, ok := s.TimeFormat.(smf.MetricTicks)
	require.True(t, ok)
	assert.Equal(t, uint16(sequencer.PPQ), mt.Resolution())

	var bpm float64
	for _, ev := range s.Tracks[0] {
		msg := ev.Message
		if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
			usec := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
			bpm = 60000000.0 / float64(usec)
		}
	}
	assert.InDelta(t, 84.0, bpm, 0.01)

	var tick int64
	var keys []uint8
	for _, ev := range s.Tracks[1] {
		tick += int64(ev.Delta)
		var ch, key, vel uint8
		if gomidi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) {
			keys = append(keys, key)
		}
	}
	assert.Len(t, keys, 8)
	assert.Equal(t, uint8(47), keys[0])
	assert.LessOrEqual(t, tick, int64(exp.Loop))
}
