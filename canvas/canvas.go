package canvas

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"go-synesthesia/palette"
)

// SampleProvider reads rectangular blocks of pixel samples.
// Blocks are row-major; anything outside the surface reads as background.
type SampleProvider interface {
	ReadBlock(x, y, w, h int) []palette.RGB
}

// Canvas is the paint surface
type Canvas struct {
	img *image.RGBA
}

// New creates a blank (fully transparent) canvas
func New(w, h int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// FromImage scales img onto a w×h canvas. Nearest-neighbour keeps palette
// colors exact so they still match after scaling.
func FromImage(img image.Image, w, h int) *Canvas {
	c := New(w, h)
	draw.NearestNeighbor.Scale(c.img, c.img.Bounds(), img, img.Bounds(), draw.Src, nil)
	return c
}

// Bounds returns the canvas size
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// Image exposes the backing image (read-only use)
func (c *Canvas) Image() image.Image {
	return c.img
}

// At returns the sample at (x, y)
func (c *Canvas) At(x, y int) palette.RGB {
	if !image.Pt(x, y).In(c.img.Rect) {
		return palette.Background
	}
	i := c.img.PixOffset(x, y)
	px := c.img.Pix[i : i+4 : i+4]
	if px[3] == 0 {
		return palette.Background
	}
	return palette.RGB{px[0], px[1], px[2]}
}

// ReadBlock implements SampleProvider
func (c *Canvas) ReadBlock(x, y, w, h int) []palette.RGB {
	if w <= 0 || h <= 0 {
		return nil
	}
	out := make([]palette.RGB, w*h)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			out[row*w+col] = c.At(x+col, y+row)
		}
	}
	return out
}

// Fill paints a rectangle a solid color
func (c *Canvas) Fill(r image.Rectangle, px palette.RGB) {
	draw.Draw(c.img, r.Intersect(c.img.Rect), image.NewUniform(opaque(px)), image.Point{}, draw.Src)
}

// Set paints a single pixel
func (c *Canvas) Set(x, y int, px palette.RGB) {
	c.img.SetRGBA(x, y, opaque(px))
}

// Dab stamps a round brush centered at (x, y)
func (c *Canvas) Dab(x, y, radius int, px palette.RGB) {
	if radius < 1 {
		c.Set(x, y, px)
		return
	}
	col := opaque(px)
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			c.img.SetRGBA(x+dx, y+dy, col)
		}
	}
}

// Stroke draws a line of dabs from (x0, y0) to (x1, y1)
func (c *Canvas) Stroke(x0, y0, x1, y1, radius int, px palette.RGB) {
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		c.Dab(x0, y0, radius, px)
		return
	}
	for i := 0; i <= steps; i++ {
		c.Dab(x0+dx*i/steps, y0+dy*i/steps, radius, px)
	}
}

// Snap rewrites every pixel to its nearest palette color, or to the
// background when nothing is within maxDist (Lab distance)
func (c *Canvas) Snap(maxDist float64) {
	b := c.img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := c.At(x, y)
			if px == palette.Background {
				continue
			}
			if id, ok := palette.Nearest(px, maxDist); ok {
				col, _ := palette.Get(id)
				c.Set(x, y, col.RGB)
			} else {
				c.Set(x, y, palette.Background)
			}
		}
	}
}

// Clear wipes the canvas back to transparent
func (c *Canvas) Clear() {
	clear(c.img.Pix)
}

func opaque(px palette.RGB) color.RGBA {
	return color.RGBA{R: px[0], G: px[1], B: px[2], A: 0xff}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
