package theme

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// Dusk is the built-in palette used when no theme file is configured
func Dusk() *Palette {
	hexes := []string{
		"#120c1f", "#1f1633", "#3b2d5c", "#6e5a9c", "#c9bce8",
		"#e9a8c8", "#f26b6b", "#f2a65a", "#ffd166",
	}
	p := &Palette{Name: "Dusk"}
	for _, h := range hexes {
		c, _ := colorful.Hex(h)
		r, g, b := c.RGB255()
		p.Colors = append(p.Colors, RGB{r, g, b})
	}
	return p
}

// LoadGPL reads a GIMP palette file
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := &Palette{}
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// First 3 fields are R G B, the rest is a name
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		var rgb RGB
		ok := true
		for i := range rgb {
			v, err := strconv.Atoi(fields[i])
			if err != nil || v < 0 || v > 255 {
				ok = false
				break
			}
			rgb[i] = uint8(v)
		}
		if ok {
			p.Colors = append(p.Colors, rgb)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(p.Colors) < 2 {
		return nil, fmt.Errorf("palette %s needs at least 2 colors, found %d", path, len(p.Colors))
	}

	return p, nil
}

// LoadOrDefault loads path, falling back to Dusk when path is empty
func LoadOrDefault(path string) (*Palette, error) {
	if path == "" {
		return Dusk(), nil
	}
	return LoadGPL(path)
}

// Lookup returns the color at normalized position 0-1, blended in Lab
// space between neighbouring entries
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := p.Colors[i].colorful()
	c1 := p.Colors[i+1].colorful()
	r, g, b := c0.BlendLab(c1, frac).Clamped().RGB255()
	return RGB{r, g, b}
}

// Index returns color at specific index (no interpolation)
func (p *Palette) Index(i int) RGB {
	if i < 0 {
		return p.Colors[0]
	}
	if i >= len(p.Colors) {
		return p.Colors[len(p.Colors)-1]
	}
	return p.Colors[i]
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}

// Hex returns "#rrggbb"
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
