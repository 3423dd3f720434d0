package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-synesthesia/config"
	"go-synesthesia/pattern"
)

// paletteImage paints the kick cell yellow and the pad cell blue, on a
// half-size image so scaling is exercised too
func paletteImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	yellow := color.RGBA{255, 246, 0, 255}
	blue := color.RGBA{4, 55, 242, 255}
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, yellow)
			img.Set(300+x, y, blue)
		}
	}
	return img
}

func TestRenderImage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Seed = 3

	views, err := renderImage(cfg, paletteImage(), 0)
	require.NoError(t, err)
	require.Len(t, views, 12)

	kick := views[0]
	assert.Equal(t, pattern.Kick, kick.Instrument)
	assert.Equal(t, 200*200, kick.Stats.Shaded)
	assert.Equal(t, "D", kick.Pattern.Slots[0].Pitch.Letter)

	pad := views[3]
	assert.Equal(t, pattern.Atmosphere, pad.Instrument)
	assert.Equal(t, "E", pad.Pattern.Slots[0].Pitch.Letter)

	for _, v := range views[4:] {
		assert.True(t, v.Pattern.IsSilent())
	}

	exp := exportFor(cfg, views)
	assert.Len(t, exp.Voices, 2)
	assert.Equal(t, 84.0, exp.Tempo)
}

func TestDecodeImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "painting.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, paletteImage()))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	img, err := decodeImage(path)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(400, 300), img.Bounds().Size())

	_, err = decodeImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestPrintViews(t *testing.T) {
	views, err := renderImage(config.DefaultConfig(), paletteImage(), 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	printViews(&buf, views)
	out := buf.String()
	assert.Contains(t, out, "kick")
	assert.Contains(t, out, "yellow")
	assert.Contains(t, out, "blue")
}
