// Package histogram counts palette colors over rectangular pixel blocks.
package histogram

import "go-synesthesia/palette"

// Block is a row-major block of samples. Px may be shorter than W*H when
// the source surface hands back a truncated read.
type Block struct {
	W, H int
	Px   []palette.RGB
}

// Sub copies out the w×h sub-block at (x, y). Samples missing from a
// truncated parent are left out of the copy rather than invented.
func (b Block) Sub(x, y, w, h int) Block {
	out := Block{W: w, H: h, Px: make([]palette.RGB, 0, w*h)}
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			if row < 0 || col < 0 || row >= b.H || col >= b.W {
				continue
			}
			i := row*b.W + col
			if i >= len(b.Px) {
				continue
			}
			out.Px = append(out.Px, b.Px[i])
		}
	}
	return out
}

// Stats summarizes one region. It is a plain value: two scans of the same
// pixels compare equal with ==.
type Stats struct {
	Shaded   int
	Counts   [palette.Count]int
	Dominant palette.ID
}

// Empty returns stats for a region with no recognized paint
func Empty() Stats {
	return Stats{Dominant: palette.None}
}

// Scan counts every sample that exactly matches a palette color.
// Anything else (background, unknown paint) is skipped.
func Scan(b Block) Stats {
	s := Empty()
	n := len(b.Px)
	if b.W > 0 && b.H > 0 && b.W*b.H < n {
		n = b.W * b.H
	}
	for _, px := range b.Px[:n] {
		id, ok := palette.Lookup(px)
		if !ok {
			continue
		}
		s.Counts[id]++
		s.Shaded++
	}
	s.Dominant = dominant(s.Counts)
	return s
}

// dominant picks the highest count; strict > keeps the first-declared
// color on ties
func dominant(counts [palette.Count]int) palette.ID {
	best, bestCount := palette.None, 0
	for i, n := range counts {
		if n > bestCount {
			best, bestCount = palette.ID(i), n
		}
	}
	return best
}

// IsEmpty reports whether nothing in the region is painted
func (s Stats) IsEmpty() bool {
	return s.Shaded == 0
}

// DominantColor resolves the dominant palette color, if any
func (s Stats) DominantColor() (palette.Color, bool) {
	if s.Shaded == 0 {
		return palette.Color{}, false
	}
	return palette.Get(s.Dominant)
}
