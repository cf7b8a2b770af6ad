package io

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"fluid-demo/math"
	"fluid-demo/shadertypes"
)

const ReportVersion = "1.0"

// LayoutReport is the .layout.json snapshot of the shared layouts. Two
// builds agree on the GPU contract iff their reports have no differences.
type LayoutReport struct {
	Version  string               `json:"version"`
	GridSize shadertypes.GridSize `json:"grid_size"`
	Layouts  []shadertypes.Layout `json:"layouts"`
	Samples  []SampleData         `json:"samples,omitempty"`
}

// SampleData is a reference payload and its encoded bytes.
type SampleData struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// NewLayoutReport captures the current layouts and reference payloads.
func NewLayoutReport(grid shadertypes.GridSize) (*LayoutReport, error) {
	if !grid.Valid() {
		return nil, fmt.Errorf("report: grid size %d: %w", uint16(grid), shadertypes.ErrInvalidGridSize)
	}
	r := &LayoutReport{
		Version:  ReportVersion,
		GridSize: grid,
		Layouts:  shadertypes.Layouts(),
	}
	for _, s := range ReferenceSamples() {
		r.Samples = append(r.Samples, SampleData{Name: s.Name, Hex: hex.EncodeToString(s.Bytes)})
	}
	return r, nil
}

// Sample is a named reference payload.
type Sample struct {
	Name  string
	Bytes []byte
}

// ReferenceSamples returns the fixed payloads used to compare encodings
// between builds and against the GPU.
func ReferenceSamples() []Sample {
	verts := shadertypes.EncodeVertices(nil, []shadertypes.Vertex{
		{Position: math.NewVec2(0, 0), Texcoord: math.NewVec2(0, 0)},
		{Position: math.NewVec2(1, 1), Texcoord: math.NewVec2(1, 1)},
	})
	forcing, _ := shadertypes.ForcingConstant{
		A:     math.NewVec2(10, 20),
		B:     math.NewVec2(30, 40),
		Force: math.NewVec2(1, -1),
	}.MarshalBinary()
	return []Sample{
		{Name: "two_vertices", Bytes: verts},
		{Name: "forcing_constant", Bytes: forcing},
		{Name: "fullscreen_quad", Bytes: shadertypes.EncodeVertices(nil, shadertypes.FullscreenQuad())},
	}
}

// SaveLayoutReport writes r as indented JSON.
func SaveLayoutReport(path string, r *LayoutReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal layout report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// LoadLayoutReport reads a report written by SaveLayoutReport.
func LoadLayoutReport(path string) (*LayoutReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout report: %w", err)
	}

	r := &LayoutReport{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to parse layout report %s: %w", path, err)
	}
	return r, nil
}

// Diff lists human-readable differences from want to got. Layouts and
// samples are matched by name; anything present on one side only is a
// difference.
func Diff(want, got *LayoutReport) []string {
	var out []string
	if want.Version != got.Version {
		out = append(out, fmt.Sprintf("version: want %s, got %s", want.Version, got.Version))
	}
	if want.GridSize != got.GridSize {
		out = append(out, fmt.Sprintf("grid size: want %s, got %s", want.GridSize, got.GridSize))
	}

	gotLayouts := map[string]shadertypes.Layout{}
	for _, l := range got.Layouts {
		gotLayouts[l.Name] = l
	}
	wantLayouts := map[string]bool{}
	for _, w := range want.Layouts {
		wantLayouts[w.Name] = true
		g, ok := gotLayouts[w.Name]
		if !ok {
			out = append(out, fmt.Sprintf("layout %s: missing", w.Name))
			continue
		}
		if w.Size != g.Size {
			out = append(out, fmt.Sprintf("layout %s: size want %d, got %d", w.Name, w.Size, g.Size))
		}
		if w.Align != g.Align {
			out = append(out, fmt.Sprintf("layout %s: align want %d, got %d", w.Name, w.Align, g.Align))
		}
		if !reflect.DeepEqual(w.Fields, g.Fields) {
			out = append(out, fmt.Sprintf("layout %s: fields want %v, got %v", w.Name, w.Fields, g.Fields))
		}
	}
	for _, g := range got.Layouts {
		if !wantLayouts[g.Name] {
			out = append(out, fmt.Sprintf("layout %s: unexpected", g.Name))
		}
	}

	gotSamples := map[string]string{}
	for _, s := range got.Samples {
		gotSamples[s.Name] = s.Hex
	}
	wantSamples := map[string]bool{}
	for _, s := range want.Samples {
		wantSamples[s.Name] = true
		h, ok := gotSamples[s.Name]
		switch {
		case !ok:
			out = append(out, fmt.Sprintf("sample %s: missing", s.Name))
		case h != s.Hex:
			out = append(out, fmt.Sprintf("sample %s: want %s, got %s", s.Name, s.Hex, h))
		}
	}
	for _, s := range got.Samples {
		if !wantSamples[s.Name] {
			out = append(out, fmt.Sprintf("sample %s: unexpected", s.Name))
		}
	}
	return out
}
