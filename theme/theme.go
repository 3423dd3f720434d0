package theme

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Swatch   rune // ■ palette entry
	Pixel    rune // █ painted canvas block
	Empty    rune // · unpainted canvas block
	Live     rune // ● cell has a playing handle
	Silent   rune // ○ cell is silent
	Selected rune // ▸ current color
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Swatch:   '■',
			Pixel:    '█',
			Empty:    '·',
			Live:     '●',
			Silent:   '○',
			Selected: '▸',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0   // near black
	RoleSurface = 0.125 // canvas checker
	RoleMuted   = 0.25  // dim text
	RoleFG      = 0.5   // readable text
	RoleAccent  = 0.625 // header
	RoleActive  = 0.75  // live cells
	RoleWarning = 0.875 // errors
	RoleSuccess = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

// Checker returns the two alternating backgrounds for unpainted cells
func (t *Theme) Checker() (even, odd RGB) {
	return t.RGB(RoleBG), t.RGB(RoleSurface)
}

// Dim mixes c toward the theme background; amount 0 keeps c, 1 is the
// background itself
func (t *Theme) Dim(c RGB, amount float64) RGB {
	bg := t.RGB(RoleBG).colorful()
	r, g, b := c.colorful().BlendLab(bg, amount).Clamped().RGB255()
	return RGB{r, g, b}
}

// Readable picks black or white text for a background
func Readable(bg RGB) lipgloss.Color {
	l, _, _ := bg.colorful().Lab()
	if l > 0.6 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color("#ffffff")
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
