package shadertypes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// GridSize is the simulation resolution in cells per axis. Exactly one
// value is active for a build; host allocations and shaders must agree.
type GridSize uint16

const (
	Grid128 GridSize = 128
	Grid256 GridSize = 256
	Grid320 GridSize = 320
	Grid512 GridSize = 512

	DefaultGridSize = Grid320
)

var ErrInvalidGridSize = errors.New("shadertypes: invalid grid size")

// GridSizes lists every supported resolution in ascending order.
func GridSizes() []GridSize {
	return []GridSize{Grid128, Grid256, Grid320, Grid512}
}

func (g GridSize) Valid() bool {
	switch g {
	case Grid128, Grid256, Grid320, Grid512:
		return true
	}
	return false
}

// Float32 is the value shaders see as FLUID_SIZE.
func (g GridSize) Float32() float32 { return float32(g) }

// Cells is the number of cells per axis.
func (g GridSize) Cells() int { return int(g) }

func (g GridSize) String() string { return strconv.Itoa(int(g)) }

// ParseGridSize accepts "320", "320.0" and "320x320" (either half may
// carry a fraction of zero, and the separator may be x or X).
func ParseGridSize(s string) (GridSize, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "xX"); i >= 0 {
		w, err := parseCells(s[:i])
		if err != nil {
			return 0, err
		}
		h, err := parseCells(s[i+1:])
		if err != nil {
			return 0, err
		}
		if w != h {
			return 0, fmt.Errorf("%q: grid must be square: %w", s, ErrInvalidGridSize)
		}
		return w, nil
	}
	return parseCells(s)
}

func parseCells(s string) (GridSize, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidGridSize)
	}
	if f < 0 || f > 65535 {
		return 0, fmt.Errorf("%q: want one of %v: %w", s, GridSizes(), ErrInvalidGridSize)
	}
	g := GridSize(f)
	if float64(g) != f || !g.Valid() {
		return 0, fmt.Errorf("%q: want one of %v: %w", s, GridSizes(), ErrInvalidGridSize)
	}
	return g, nil
}

func (g GridSize) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%d: %w", uint16(g), ErrInvalidGridSize)
	}
	return []byte(g.String()), nil
}

func (g *GridSize) UnmarshalText(text []byte) error {
	parsed, err := ParseGridSize(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
