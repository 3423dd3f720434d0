package palette

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is a single pixel sample
type RGB [3]uint8

// Background is what an unpainted pixel reads as
var Background = RGB{0, 0, 0}

// ID identifies a paint color by its position in the palette
type ID int

// None marks "no recognized color"
const None ID = -1

// Count is the number of recognized paint colors
const Count = 7

// Color is one paint color and the scale letter it plays
type Color struct {
	ID     ID
	Name   string
	Hex    string
	RGB    RGB
	Letter string
}

// Declaration order matters: dominant-color ties go to the earlier entry.
var colors = [Count]Color{
	{ID: 0, Name: "white", Hex: "#ffffff", Letter: "B"},
	{ID: 1, Name: "red", Hex: "#e30022", Letter: "C#"},
	{ID: 2, Name: "yellow", Hex: "#fff600", Letter: "D"},
	{ID: 3, Name: "blue", Hex: "#0437f2", Letter: "E"},
	{ID: 4, Name: "green", Hex: "#046347", Letter: "F#"},
	{ID: 5, Name: "orange", Hex: "#c9822a", Letter: "G"},
	{ID: 6, Name: "brown", Hex: "#633c16", Letter: "A"},
}

var byRGB map[RGB]ID

func init() {
	byRGB = make(map[RGB]ID, Count)
	for i := range colors {
		c, err := colorful.Hex(colors[i].Hex)
		if err != nil {
			panic(fmt.Sprintf("palette: bad hex %q for %s: %v", colors[i].Hex, colors[i].Name, err))
		}
		r, g, b := c.RGB255()
		colors[i].RGB = RGB{r, g, b}
		byRGB[colors[i].RGB] = colors[i].ID
	}
}

// All returns the palette in declaration order
func All() []Color {
	out := make([]Color, Count)
	copy(out, colors[:])
	return out
}

// Get returns the color with the given id
func Get(id ID) (Color, bool) {
	if id < 0 || int(id) >= Count {
		return Color{}, false
	}
	return colors[id], true
}

// Lookup finds the palette color whose RGB exactly matches the sample
func Lookup(px RGB) (ID, bool) {
	id, ok := byRGB[px]
	if !ok {
		return None, false
	}
	return id, true
}

// ByName finds a color by name ("white", "red", ...)
func ByName(name string) (Color, bool) {
	for _, c := range colors {
		if c.Name == name {
			return c, true
		}
	}
	return Color{}, false
}

// Colorful returns the color as a go-colorful value for blending
func (c Color) Colorful() colorful.Color {
	col, _ := colorful.MakeColor(c)
	return col
}

// RGBA implements color.Color so a palette Color can be drawn directly
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.RGB.RGBA()
}

// RGBA implements color.Color (fully opaque)
func (px RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(px[0])
	r |= r << 8
	g = uint32(px[1])
	g |= g << 8
	b = uint32(px[2])
	b |= b << 8
	return r, g, b, 0xffff
}

// Hex formats a sample as #rrggbb
func (px RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", px[0], px[1], px[2])
}

func (c Color) String() string {
	return c.Name
}

// Nearest finds the palette color closest to px in Lab space. Samples
// further than maxDist from every color (or closer to the background
// than to any color) match nothing.
func Nearest(px RGB, maxDist float64) (ID, bool) {
	if id, ok := Lookup(px); ok {
		return id, true
	}
	sample, _ := colorful.MakeColor(px)
	bg, _ := colorful.MakeColor(Background)

	best, bestDist := None, maxDist
	for _, c := range colors {
		if d := sample.DistanceLab(c.Colorful()); d <= bestDist {
			best, bestDist = c.ID, d
		}
	}
	if best == None || sample.DistanceLab(bg) < bestDist {
		return None, false
	}
	return best, true
}
