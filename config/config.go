package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"fluid-demo/internal/framering"
	"fluid-demo/shadertypes"
)

var ErrInvalidConfig = errors.New("invalid config")

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config selects the single grid resolution and the buffer conventions
// every tool and backend in the repository agrees on.
type Config struct {
	GridSize       shadertypes.GridSize `yaml:"grid_size"`
	ForcingBinding uint32               `yaml:"forcing_binding"`
	FramesInFlight int                  `yaml:"frames_in_flight"`
	UniformAlign   int                  `yaml:"uniform_align"` // 0 = query the device
	Headers        []string             `yaml:"headers"`
	Log            LogConfig            `yaml:"log"`
}

func Default() Config {
	return Config{
		GridSize:       shadertypes.DefaultGridSize,
		ForcingBinding: shadertypes.ForcingConstantBinding,
		FramesInFlight: framering.DefaultFrames,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file on top of Default. Keys absent from the file keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !c.GridSize.Valid() {
		return fmt.Errorf("%w: grid_size %d", ErrInvalidConfig, uint16(c.GridSize))
	}
	if c.FramesInFlight < framering.MinFrames || c.FramesInFlight > framering.MaxFrames {
		return fmt.Errorf("%w: frames_in_flight %d, want %d..%d", ErrInvalidConfig, c.FramesInFlight, framering.MinFrames, framering.MaxFrames)
	}
	if c.UniformAlign < 0 || c.UniformAlign&(c.UniformAlign-1) != 0 {
		return fmt.Errorf("%w: uniform_align %d is not a power of two", ErrInvalidConfig, c.UniformAlign)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
