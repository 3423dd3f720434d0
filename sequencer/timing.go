package sequencer

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// PPQ is the clock resolution in ticks per quarter note
const PPQ = 96

// BeatsPerBar is fixed: the loop is always in 4/4
const BeatsPerBar = 4

// Ticks is a musical duration in clock ticks
type Ticks int64

// ErrBadNotation is returned for durations ParseNotation can't read
var ErrBadNotation = errors.New("bad duration notation")

// Bars returns the length of n bars
func Bars(n int) Ticks {
	return Ticks(n * BeatsPerBar * PPQ)
}

// ParseNotation reads transport durations: "4n" (quarter), "8n", "16n",
// "2n", "1n" (whole note), "1m"/"2m" (bars)
func ParseNotation(s string) (Ticks, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadNotation, s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadNotation, s)
	}

	switch s[len(s)-1] {
	case 'm':
		return Bars(n), nil
	case 'n':
		whole := BeatsPerBar * PPQ
		if whole%n != 0 {
			return 0, fmt.Errorf("%w: %q does not divide the bar", ErrBadNotation, s)
		}
		return Ticks(whole / n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadNotation, s)
}

// Duration converts ticks to wall time at a tempo
func (t Ticks) Duration(bpm float64) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Duration(float64(t) * float64(time.Minute) / (bpm * PPQ))
}

// Quarters returns the length in quarter notes
func (t Ticks) Quarters() float64 {
	return float64(t) / PPQ
}
