package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"go-synesthesia/canvas"
	"go-synesthesia/config"
	"go-synesthesia/debug"
	"go-synesthesia/grid"
	"go-synesthesia/midi"
	"go-synesthesia/pattern"
	"go-synesthesia/sequencer"
	"go-synesthesia/theme"
	"go-synesthesia/tui"
)

var (
	configPath string
	debugPath  string
	portName   string
	tempo      float64
	rows       int
	cols       int
	seed       int64
	midiOut    string
	snapDist   float64
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f2a65a"))
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "go-synesthesia",
	Short: "Paint on a grid, hear it as a looping arrangement",
	Long: `go-synesthesia turns colors painted on a canvas into music. The canvas
is split into 200x200 cells; each cell drives one instrument whose pattern
comes from the colors painted in it.

Examples:
  go-synesthesia                  # paint in the terminal
  go-synesthesia play --port fluid
  go-synesthesia ports
  go-synesthesia render painting.png --midi painting.mid --seed 7`,
	SilenceUsage: true,
	RunE:         runPlay,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Paint in the terminal and play through MIDI",
	RunE:  runPlay,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	RunE:  runPorts,
}

var renderCmd = &cobra.Command{
	Use:   "render <image>",
	Short: "Turn an image into patterns (and optionally a MIDI file)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (default ~/.config/go-synesthesia/config.json)")
	pf.StringVar(&debugPath, "debug", "", "write a debug log to this file")
	pf.Float64VarP(&tempo, "tempo", "t", 0, "tempo in BPM (20-300)")
	pf.IntVar(&rows, "rows", 0, "grid rows")
	pf.IntVar(&cols, "cols", 0, "grid columns")
	pf.Int64Var(&seed, "seed", 0, "random seed for arpeggios (0 = random)")
	pf.StringVarP(&portName, "port", "p", "", "MIDI output port (exact name or substring)")

	renderCmd.Flags().StringVarP(&midiOut, "midi", "o", "", "write one loop as a Standard MIDI File")
	renderCmd.Flags().Float64Var(&snapDist, "snap", 0, "snap colors within this Lab distance to the palette (0 = exact only)")

	rootCmd.AddCommand(playCmd, portsCmd, renderCmd)
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("tempo") {
		cfg.Tempo = tempo
	}
	if flags.Changed("rows") {
		cfg.Rows = rows
	}
	if flags.Changed("cols") {
		cfg.Cols = cols
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("port") {
		cfg.Output.PortName = portName
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func enableDebug() error {
	if debugPath == "" {
		return nil
	}
	return debug.Enable(debugPath)
}

// session is everything one run of the engine needs
type session struct {
	grid   *grid.Grid
	clock  *sequencer.Clock
	engine *sequencer.Engine
}

func newSession(cfg *config.Config, player sequencer.Player) (*session, error) {
	g, err := grid.New(cfg.Rows, cfg.Cols)
	if err != nil {
		return nil, err
	}
	clock := sequencer.NewClock()
	clock.SetTempo(cfg.Tempo)
	clock.SetLoopLength(sequencer.Bars(cfg.LoopBars))

	engine, err := sequencer.NewEngine(g, sequencer.NewLifecycle(g.Len(), clock, player), pattern.NewRand(cfg.Seed))
	if err != nil {
		return nil, err
	}
	debug.Log("config", "grid %dx%d, %.0f bpm, %d bar loop, seed %d", cfg.Rows, cfg.Cols, cfg.Tempo, cfg.LoopBars, cfg.Seed)
	return &session{grid: g, clock: clock, engine: engine}, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := enableDebug(); err != nil {
		return err
	}
	defer debug.Disable()

	pal, err := theme.LoadOrDefault(cfg.UI.ThemePath)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}
	th := theme.New(pal)

	var player sequencer.Player = sequencer.LogPlayer{}
	out, err := midi.OpenOutput(cfg.Output.PortName, cfg.MIDIOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf("no MIDI output (%v); patterns will only be logged", err)))
		if errors.Is(err, midi.ErrPortsTimeout) {
			fmt.Fprintln(os.Stderr, dimStyle.Render("Fix: sudo killall coreaudiod midiserver"))
		}
	} else {
		defer out.Close()
		player = out
	}

	s, err := newSession(cfg, player)
	if err != nil {
		return err
	}
	w, h := s.grid.Size()
	cv := canvas.New(w, h)

	m := tui.NewModel(s.engine, s.clock, cv, th, cfg.UI.BrushSize)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	_, err = p.Run()
	s.clock.Stop()
	s.engine.Shutdown()
	return err
}

func runPorts(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("=== MIDI Output Ports ==="))
	fmt.Println(dimStyle.Render("(waiting up to 3 seconds...)"))

	names, err := midi.ListPorts()
	if errors.Is(err, midi.ErrPortsTimeout) {
		fmt.Println(warnStyle.Render("\nTIMEOUT! CoreMIDI is hung."))
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Println("  (none)")
	}
	for i, name := range names {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}
