package grid

import (
	"errors"
	"fmt"

	"go-synesthesia/canvas"
	"go-synesthesia/histogram"
	"go-synesthesia/pattern"
)

// CellSize is the edge length of a cell in canvas pixels
const CellSize = 200

// Half splits a cell into its 2×2 quadrants
const Half = CellSize / 2

// ErrBadSize is returned for a grid with no cells
var ErrBadSize = errors.New("grid must have at least one row and column")

// CellID indexes cells row-major
type CellID int

// Cell is one region of the canvas and the voice it drives
type Cell struct {
	ID         CellID
	Row, Col   int
	Instrument pattern.Instrument

	Stats     histogram.Stats
	Quadrants [4]histogram.Stats
}

// Kind returns the voice kind of the cell's instrument
func (c *Cell) Kind() pattern.VoiceKind {
	return c.Instrument.Kind()
}

// Origin returns the cell's top-left canvas pixel
func (c *Cell) Origin() (x, y int) {
	return c.Col * CellSize, c.Row * CellSize
}

// Scan is the fresh histogram result for one cell
type Scan struct {
	Cell      histogram.Stats
	Quadrants [4]histogram.Stats
}

// Grid owns the fixed table of cells
type Grid struct {
	rows, cols int
	cells      []*Cell
}

// New builds a rows×cols grid with instruments assigned round-robin
func New(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, rows, cols)
	}
	g := &Grid{rows: rows, cols: cols, cells: make([]*Cell, rows*cols)}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			id := row*cols + col
			g.cells[id] = &Cell{
				ID:         CellID(id),
				Row:        row,
				Col:        col,
				Instrument: pattern.InstrumentFor(id),
			}
		}
	}
	g.Reset()
	return g, nil
}

// Rows returns the row count
func (g *Grid) Rows() int { return g.rows }

// Cols returns the column count
func (g *Grid) Cols() int { return g.cols }

// Len returns the number of cells
func (g *Grid) Len() int { return len(g.cells) }

// Size returns the canvas size the grid covers
func (g *Grid) Size() (w, h int) {
	return g.cols * CellSize, g.rows * CellSize
}

// Cells returns the cells in row-major order
func (g *Grid) Cells() []*Cell {
	return g.cells
}

// Cell returns a cell by id
func (g *Grid) Cell(id CellID) (*Cell, bool) {
	if id < 0 || int(id) >= len(g.cells) {
		return nil, false
	}
	return g.cells[id], true
}

// CellAt maps a canvas coordinate to its cell
func (g *Grid) CellAt(x, y int) (CellID, bool) {
	if x < 0 || y < 0 {
		return 0, false
	}
	row, col := y/CellSize, x/CellSize
	if row >= g.rows || col >= g.cols {
		return 0, false
	}
	return CellID(row*g.cols + col), true
}

// Quadrant returns the quadrant index of a pixel inside a cell block
func Quadrant(row, col int) int {
	q := 0
	if row >= Half {
		q += 1
	}
	if col >= Half {
		q += 2
	}
	return q
}

// quadrantOrigin is the inverse of Quadrant: the (x, y) of a quadrant
func quadrantOrigin(q int) (x, y int) {
	return (q / 2) * Half, (q % 2) * Half
}

// RescanAll scans every cell and its four quadrants, row-major. It reads
// the provider and returns fresh stats; nothing on the grid changes.
func (g *Grid) RescanAll(src canvas.SampleProvider) []Scan {
	out := make([]Scan, len(g.cells))
	for i, c := range g.cells {
		x, y := c.Origin()
		block := histogram.Block{W: CellSize, H: CellSize, Px: src.ReadBlock(x, y, CellSize, CellSize)}

		out[i].Cell = histogram.Scan(block)
		for q := range out[i].Quadrants {
			qx, qy := quadrantOrigin(q)
			out[i].Quadrants[q] = histogram.Scan(block.Sub(qx, qy, Half, Half))
		}
	}
	return out
}

// Apply stores a RescanAll result. Cell and quadrant stats are written
// together so readers never see one updated without the other.
func (g *Grid) Apply(scans []Scan) {
	for i, s := range scans {
		if i >= len(g.cells) {
			break
		}
		g.cells[i].Stats = s.Cell
		g.cells[i].Quadrants = s.Quadrants
	}
}

// Reset forgets every cell's stats
func (g *Grid) Reset() {
	for _, c := range g.cells {
		c.Stats = histogram.Empty()
		for q := range c.Quadrants {
			c.Quadrants[q] = histogram.Empty()
		}
	}
}
