package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go-synesthesia/midi"
	"go-synesthesia/pattern"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// OutputConfig defines the synth MIDI output
type OutputConfig struct {
	PortName     string         `json:"portName,omitempty"`
	Channels     map[string]int `json:"channels,omitempty"` // instrument name -> 1-16
	Velocity     int            `json:"velocity,omitempty"`
	DrumVelocity int            `json:"drumVelocity,omitempty"`
	Kit          string         `json:"kit,omitempty"` // "" plays drums pitched
}

// UIConfig stores UI preferences
type UIConfig struct {
	BrushSize int    `json:"brushSize,omitempty"`
	ThemePath string `json:"themePath,omitempty"` // GIMP .gpl palette
}

// Config is the main configuration structure
type Config struct {
	Tempo    float64      `json:"tempo,omitempty"`
	LoopBars int          `json:"loopBars,omitempty"`
	Rows     int          `json:"rows,omitempty"`
	Cols     int          `json:"cols,omitempty"`
	Seed     int64        `json:"seed,omitempty"` // 0 = random
	Output   OutputConfig `json:"output,omitempty"`
	UI       UIConfig     `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tempo:    84,
		LoopBars: 2,
		Rows:     3,
		Cols:     4,
		Output: OutputConfig{
			Channels: map[string]int{
				pattern.Piano.String():      1,
				pattern.Atmosphere.String(): 2,
				pattern.Kick.String():       3,
				pattern.Snare.String():      4,
				pattern.HiHat.String():      5,
			},
			Velocity:     100,
			DrumVelocity: 64,
		},
		UI: UIConfig{
			BrushSize: 12,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-synesthesia"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file. Missing fields keep their defaults; a
// missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks ranges. Every problem is reported, not just the first.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Tempo < 20 || c.Tempo > 300 {
		bad("tempo %.1f outside 20-300", c.Tempo)
	}
	if c.LoopBars < 1 || c.LoopBars > 16 {
		bad("loopBars %d outside 1-16", c.LoopBars)
	}
	if c.Rows < 1 || c.Cols < 1 {
		bad("grid %dx%d must be at least 1x1", c.Rows, c.Cols)
	}
	for name, ch := range c.Output.Channels {
		if _, ok := pattern.ParseInstrument(name); !ok {
			bad("unknown instrument %q", name)
		}
		if ch < 1 || ch > 16 {
			bad("channel %d for %s outside 1-16", ch, name)
		}
	}
	if c.Output.Velocity < 0 || c.Output.Velocity > 127 {
		bad("velocity %d outside 0-127", c.Output.Velocity)
	}
	if c.Output.DrumVelocity < 0 || c.Output.DrumVelocity > 127 {
		bad("drumVelocity %d outside 0-127", c.Output.DrumVelocity)
	}
	if c.Output.Kit != "" {
		if _, ok := midi.LookupKit(c.Output.Kit); !ok {
			bad("unknown kit %q (have %v)", c.Output.Kit, midi.KitNames())
		}
	}
	if c.UI.BrushSize < 0 {
		bad("brushSize %d is negative", c.UI.BrushSize)
	}
	return errors.Join(errs...)
}

// Channel returns the 1-based channel for an instrument (0 if unset)
func (c *Config) Channel(inst pattern.Instrument) int {
	return c.Output.Channels[inst.String()]
}

// MIDIOptions converts the output section for the midi package
func (c *Config) MIDIOptions() midi.Options {
	opts := midi.DefaultOptions()
	for name, ch := range c.Output.Channels {
		if inst, ok := pattern.ParseInstrument(name); ok && ch >= 1 && ch <= 16 {
			opts.Channels[inst] = uint8(ch - 1)
		}
	}
	if c.Output.Velocity > 0 {
		opts.Velocity = uint8(c.Output.Velocity)
	}
	if c.Output.DrumVelocity > 0 {
		opts.DrumVelocity = uint8(c.Output.DrumVelocity)
	}
	opts.Kit = c.Output.Kit
	return opts
}
