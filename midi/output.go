package midi

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-synesthesia/debug"
	"go-synesthesia/grid"
	"go-synesthesia/pattern"
	"go-synesthesia/sequencer"
)

var (
	// ErrPortNotFound is returned when no output port matches
	ErrPortNotFound = errors.New("midi port not found")
	// ErrPortsTimeout is returned when the MIDI system doesn't answer
	ErrPortsTimeout = errors.New("timed out listing midi ports")
)

// portTimeout guards port enumeration (CoreMIDI can hang)
const portTimeout = 3 * time.Second

// Options decide how instruments land on the wire
type Options struct {
	Channels     map[pattern.Instrument]uint8 // 0-based
	Velocity     uint8                        // melodic voices
	DrumVelocity uint8                        // rhythmic voices sit lower in the mix
	Kit          string                       // "" plays drums at their pitch
}

// DefaultOptions: piano on channel 1, atmosphere on 2, drums on 3-5
func DefaultOptions() Options {
	return Options{
		Channels: map[pattern.Instrument]uint8{
			pattern.Piano:      0,
			pattern.Atmosphere: 1,
			pattern.Kick:       2,
			pattern.Snare:      3,
			pattern.HiHat:      4,
		},
		Velocity:     100,
		DrumVelocity: 64,
	}
}

func (o Options) channel(inst pattern.Instrument) uint8 {
	if ch, ok := o.Channels[inst]; ok {
		return ch & 0x0F
	}
	return 0
}

func (o Options) velocity(inst pattern.Instrument) uint8 {
	if inst.Kind() == pattern.Rhythmic {
		return o.DrumVelocity
	}
	return o.Velocity
}

// key resolves the MIDI key an instrument plays for a pitch
func (o Options) key(inst pattern.Instrument, p pattern.Pitch) (uint8, error) {
	if kit, ok := LookupKit(o.Kit); ok {
		if n, ok := kit.Notes[inst]; ok {
			return n, nil
		}
	}
	return NoteNumber(p)
}

// noteKey is one key on one channel
type noteKey struct {
	ch, key uint8
}

// voice is what one cell has queued and sounding. gen moves on every
// Silence so timers armed before it become no-ops.
type voice struct {
	gen      uint64
	nextID   uint64
	pending  map[uint64]func() bool // timer id -> stop; nil until armed
	sounding map[noteKey]int
}

// Output sends note events to a MIDI port. It implements sequencer.Player
// and sequencer.Silencer.
type Output struct {
	opts  Options
	send  func(gomidi.Message) error
	close func() error

	// afterFunc schedules note-on/off and returns a stop func; tests swap
	// it for a synchronous or manual one
	afterFunc func(time.Duration, func()) func() bool

	mu       sync.Mutex
	channels map[uint8]bool // channels that have sounded
	voices   map[grid.CellID]*voice
}

// NewOutput wraps a sender (e.g. from gomidi.SendTo)
func NewOutput(send func(gomidi.Message) error, opts Options) *Output {
	return &Output{
		opts:     opts,
		send:     send,
		channels: make(map[uint8]bool),
		voices:   make(map[grid.CellID]*voice),
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
}

// Play implements sequencer.Player. Note-on lands at ev.At, note-off
// ev.Duration later, unless the cell is silenced first.
func (o *Output) Play(ev sequencer.NoteEvent) {
	ch := o.opts.channel(ev.Instrument)
	vel := o.opts.velocity(ev.Instrument)
	delay := max(time.Until(ev.At), 0)

	for _, p := range ev.Pitches {
		key, err := o.opts.key(ev.Instrument, p)
		if err != nil {
			debug.Log("midi", "cell=%d %s: %v", ev.Cell, ev.Instrument, err)
			continue
		}
		nk := noteKey{ch, key}
		o.after(ev.Cell, delay, func(v *voice) {
			o.write(gomidi.NoteOn(ch, key, vel))
			v.sounding[nk]++
		})
		o.after(ev.Cell, delay+ev.Duration, func(v *voice) {
			if v.sounding[nk] == 0 {
				return
			}
			o.write(gomidi.NoteOff(ch, key))
			if v.sounding[nk]--; v.sounding[nk] == 0 {
				delete(v.sounding, nk)
			}
		})
	}

	o.mu.Lock()
	o.channels[ch] = true
	o.mu.Unlock()
}

// voice returns the cell's voice; mu must be held
func (o *Output) voice(cell grid.CellID) *voice {
	v, ok := o.voices[cell]
	if !ok {
		v = &voice{
			pending:  make(map[uint64]func() bool),
			sounding: make(map[noteKey]int),
		}
		o.voices[cell] = v
	}
	return v
}

// after runs fn with mu held once d has passed, unless the cell is
// silenced in the meantime
func (o *Output) after(cell grid.CellID, d time.Duration, fn func(v *voice)) {
	o.mu.Lock()
	v := o.voice(cell)
	gen, id := v.gen, v.nextID
	v.nextID++
	v.pending[id] = nil
	o.mu.Unlock()

	stop := o.afterFunc(d, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if v.gen != gen {
			return
		}
		delete(v.pending, id)
		fn(v)
	})

	o.mu.Lock()
	defer o.mu.Unlock()
	if v.gen != gen {
		stop()
		return
	}
	if _, ok := v.pending[id]; ok {
		v.pending[id] = stop
	}
}

// Silence implements sequencer.Silencer: the cell's queued notes are
// cancelled and whatever it still has sounding gets a note-off.
func (o *Output) Silence(cell grid.CellID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.voices[cell]
	if !ok {
		return
	}
	n := o.silence(v)
	debug.Log("midi", "silence cell=%d released=%d", cell, n)
}

// silence drops everything v has in flight; mu must be held
func (o *Output) silence(v *voice) int {
	v.gen++
	for _, stop := range v.pending {
		if stop != nil {
			stop()
		}
	}
	clear(v.pending)

	n := 0
	for nk := range v.sounding {
		o.write(gomidi.NoteOff(nk.ch, nk.key))
		n++
	}
	clear(v.sounding)
	return n
}

func (o *Output) write(msg gomidi.Message) {
	if err := o.send(msg); err != nil {
		debug.LogEvery(32, "midi", "send %s: %v", msg, err)
	}
}

// Close cancels queued notes, silences every channel that was used and
// closes the port
func (o *Output) Close() error {
	o.mu.Lock()
	for _, v := range o.voices {
		o.silence(v)
	}
	for ch := range o.channels {
		o.write(gomidi.ControlChange(ch, 123, 0)) // all notes off
	}
	o.channels = make(map[uint8]bool)
	o.mu.Unlock()

	if o.close != nil {
		return o.close()
	}
	return nil
}

// outPorts lists output ports, giving up after portTimeout
func outPorts() ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		return outs, nil
	case <-time.After(portTimeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, ErrPortsTimeout
	}
}

// ListPorts returns the names of all MIDI output ports
func ListPorts() ([]string, error) {
	outs, err := outPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, p := range outs {
		names[i] = p.String()
	}
	return names, nil
}

// matchPort picks the port named name: exact match first, then a
// case-insensitive substring. An empty name takes the first port.
func matchPort(names []string, name string) (int, bool) {
	if len(names) == 0 {
		return 0, false
	}
	if name == "" {
		return 0, true
	}
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	want := strings.ToLower(name)
	for i, n := range names {
		if strings.Contains(strings.ToLower(n), want) {
			return i, true
		}
	}
	return 0, false
}

// OpenOutput opens the named output port
func OpenOutput(portName string, opts Options) (*Output, error) {
	outs, err := outPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, p := range outs {
		names[i] = p.String()
	}

	i, ok := matchPort(names, portName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPortNotFound, portName)
	}
	port := outs[i]
	sender, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", port.String(), err)
	}
	debug.Log("midi", "opened output %s", port.String())

	o := NewOutput(sender, opts)
	o.close = port.Close
	return o, nil
}
