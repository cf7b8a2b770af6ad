package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluid-demo/shadertypes"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, shadertypes.Grid320, cfg.GridSize)
	assert.Equal(t, uint32(0), cfg.ForcingBinding)
	assert.Equal(t, 3, cfg.FramesInFlight)
}

func TestLoad(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "fluid.yaml"))
	require.NoError(t, err)
	assert.Equal(t, shadertypes.Grid512, cfg.GridSize)
	assert.Equal(t, 2, cfg.FramesInFlight)
	assert.Equal(t, 256, cfg.UniformAlign)
	assert.Len(t, cfg.Headers, 2)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset keys keep defaults")
}

func TestLoadRejectsInvalidGrid(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "bad_grid.yaml"))
	assert.ErrorIs(t, err, shadertypes.ErrInvalidGridSize)
}

func TestLoadRejectsFrames(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "bad_frames.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadRejectsLogLevel(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "bad_level.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "log.level")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.UniformAlign = 48
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.Log.Format = "xml"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.Log.Level = "verbose"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.Log.Level = "WARN"
	assert.NoError(t, cfg.Validate())

	cfg = Default()
	cfg.GridSize = 64
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
