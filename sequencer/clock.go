package sequencer

import (
	"sync"
	"time"

	"go-synesthesia/debug"
)

// Transport defaults
const (
	DefaultTempo    = 84
	DefaultLoopBars = 2
)

// Transport is the shared looping clock voices are scheduled against
type Transport interface {
	Start()
	Stop()
	SetTempo(bpm float64)
	SetLoopLength(length Ticks)
	SetLooping(on bool)

	// Schedule calls fn on every tick that is a multiple of interval,
	// counted from the top of the loop. Clear guarantees fn is not running
	// and will not run again once it returns.
	Schedule(interval Ticks, fn func(Step)) ScheduleID
	Clear(id ScheduleID)
}

// ScheduleID identifies a Schedule registration
type ScheduleID int

// Step is passed to scheduled callbacks
type Step struct {
	Index    int64         // interval count since the top of the loop
	At       time.Time     // when the step sounds
	Duration time.Duration // interval length at the current tempo
}

type repeat struct {
	id       ScheduleID
	interval Ticks
	fn       func(Step)
}

// Clock implements Transport with a single play-loop goroutine.
// Callbacks run one at a time, in registration order, with mu held.
type Clock struct {
	mu      sync.Mutex
	tempo   float64
	loopLen Ticks
	looping bool
	tick    Ticks
	running bool
	stop    chan struct{}
	nextID  ScheduleID
	repeats []*repeat
}

// NewClock creates a stopped clock at the default tempo and loop
func NewClock() *Clock {
	return &Clock{
		tempo:   DefaultTempo,
		loopLen: Bars(DefaultLoopBars),
		looping: true,
	}
}

// Start begins playback from the current position
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	debug.Log("clock", "start tempo=%.0f loop=%d ticks", c.tempo, c.loopLen)
	go c.playLoop(c.stop)
}

// Stop halts playback and rewinds to the top of the loop
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.stop)
	c.tick = 0
	debug.Log("clock", "stop")
}

// Running reports whether the play loop is active
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetTempo sets the BPM
func (c *Clock) SetTempo(bpm float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if bpm < 20 {
		bpm = 20
	}
	if bpm > 300 {
		bpm = 300
	}
	c.tempo = bpm
}

// Tempo returns the BPM
func (c *Clock) Tempo() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tempo
}

// SetLoopLength sets where the loop wraps
func (c *Clock) SetLoopLength(length Ticks) {
	if length <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loopLen = length
	if c.looping && c.tick >= length {
		c.tick = 0
	}
}

// SetLooping turns wrapping at the loop length on or off
func (c *Clock) SetLooping(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.looping = on
}

// Position returns the current tick within the loop
func (c *Clock) Position() Ticks {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// Schedule implements Transport
func (c *Clock) Schedule(interval Ticks, fn func(Step)) ScheduleID {
	if interval <= 0 {
		interval = PPQ
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.repeats = append(c.repeats, &repeat{id: c.nextID, interval: interval, fn: fn})
	return c.nextID
}

// Clear implements Transport. It takes the same lock callbacks run under,
// so an in-flight callback finishes before Clear returns.
func (c *Clock) Clear(id ScheduleID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, r := range c.repeats {
		if r.id == id {
			c.repeats = append(c.repeats[:i], c.repeats[i+1:]...)
			return
		}
	}
}

// Scheduled returns how many callbacks are registered
func (c *Clock) Scheduled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.repeats)
}

// Advance fires every callback due on the current tick, then moves one
// tick forward (wrapping at the loop end). It returns the tick length at
// the current tempo. The play loop calls it; tests can drive it directly.
func (c *Clock) Advance(at time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advance(at)
}

func (c *Clock) advance(at time.Time) time.Duration {
	for _, r := range c.repeats {
		if c.tick%r.interval != 0 {
			continue
		}
		r.fn(Step{
			Index:    int64(c.tick / r.interval),
			At:       at,
			Duration: r.interval.Duration(c.tempo),
		})
	}

	c.tick++
	if c.looping && c.tick >= c.loopLen {
		c.tick = 0
		debug.LogEvery(8, "clock", "loop wrap")
	}
	return Ticks(1).Duration(c.tempo)
}

// playLoop ticks until stop is closed. Tick times accumulate from the
// previous target, not from when the goroutine woke.
func (c *Clock) playLoop(stop <-chan struct{}) {
	next := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		c.mu.Lock()
		if !c.running || c.stop != stop {
			// stopped (and maybe restarted) while we waited for the lock
			c.mu.Unlock()
			return
		}
		next = next.Add(c.advance(next))
		c.mu.Unlock()

		timer.Reset(max(time.Until(next), 0))
	}
}
