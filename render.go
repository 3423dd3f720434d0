package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"go-synesthesia/canvas"
	"go-synesthesia/config"
	"go-synesthesia/debug"
	"go-synesthesia/midi"
	"go-synesthesia/sequencer"
	"go-synesthesia/widgets"
)

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := enableDebug(); err != nil {
		return err
	}
	defer debug.Disable()

	img, err := decodeImage(args[0])
	if err != nil {
		return err
	}

	views, settleErr := renderImage(cfg, img, snapDist)
	printViews(os.Stdout, views)
	if settleErr != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render(settleErr.Error()))
	}

	if midiOut == "" {
		return nil
	}
	f, err := os.Create(midiOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := midi.WriteSMF(f, exportFor(cfg, views), cfg.MIDIOptions()); err != nil {
		return err
	}
	fmt.Println(dimStyle.Render("wrote " + midiOut))
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	debug.Log("config", "decoded %s (%s, %v)", path, format, img.Bounds().Size())
	return img, nil
}

// renderImage scales img onto the grid and runs one settle pass. The
// transport is never started; handles are disposed before returning.
func renderImage(cfg *config.Config, img image.Image, snap float64) ([]sequencer.CellView, error) {
	s, err := newSession(cfg, sequencer.LogPlayer{})
	if err != nil {
		return nil, err
	}
	defer s.engine.Shutdown()

	w, h := s.grid.Size()
	cv := canvas.FromImage(img, w, h)
	if snap > 0 {
		cv.Snap(snap)
	}

	settleErr := s.engine.OnStrokeSettled(cv)
	return s.engine.Snapshot(), settleErr
}

// exportFor collects the sounding cells into one loop
func exportFor(cfg *config.Config, views []sequencer.CellView) midi.Export {
	exp := midi.Export{
		Tempo: cfg.Tempo,
		Loop:  sequencer.Bars(cfg.LoopBars),
	}
	for _, v := range views {
		if v.Pattern.IsSilent() {
			continue
		}
		exp.Voices = append(exp.Voices, midi.Voice{Cell: v.ID, Instrument: v.Instrument, Pattern: v.Pattern})
	}
	return exp
}

func printViews(w io.Writer, views []sequencer.CellView) {
	fmt.Fprintln(w, titleStyle.Render("cell  instrument  color        px  pattern"))
	for _, v := range views {
		color := strings.Repeat(" ", 8)
		if c, ok := v.Stats.DominantColor(); ok {
			color = fmt.Sprintf("%s %-6s", widgets.RenderPad(c.RGB), c.Name)
		}
		line := fmt.Sprintf("%4d  %-10s  %s  %6d  %s", v.ID, v.Instrument, color, v.Stats.Shaded, v.Pattern)
		if v.Pattern.IsSilent() {
			line = dimStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}
