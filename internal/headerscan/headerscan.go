// Package headerscan reads shader-side declarations of the shared layouts
// (Metal/C++ headers, GLSL and WGSL sources) and reports where copies have
// drifted from each other or from the Go declaration.
package headerscan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"fluid-demo/shadertypes"
)

var (
	ErrNoGridSize          = errors.New("headerscan: no active grid size definition")
	ErrConflictingGridSize = errors.New("headerscan: more than one active grid size definition")
)

// Member is one field of a scanned struct.
type Member struct {
	Name       string
	Type       string
	Components int
}

type Struct struct {
	Name    string
	Members []Member
}

// Canonical maps historical struct names onto the Go layout names.
func (s Struct) Canonical() string {
	if c, ok := structAliases[s.Name]; ok {
		return c
	}
	return s.Name
}

var structAliases = map[string]string{
	"QuardVertex":   "Vertex",
	"QuadVertex":    "Vertex",
	"FuildConstant": "ForcingConstant",
	"FluidConstant": "ForcingConstant",
}

// Header is what Scan found in one file.
type Header struct {
	Name         string
	GridSize     shadertypes.GridSize
	Alternatives []string // commented-out grid size candidates, as written
	Structs      []Struct
}

// Struct returns the struct whose canonical name is name.
func (h *Header) Struct(name string) (Struct, bool) {
	for _, s := range h.Structs {
		if s.Canonical() == name {
			return s, true
		}
	}
	return Struct{}, false
}

var (
	// FUILD_SIZE is the legacy spelling still found in the demo headers.
	defineRe     = regexp.MustCompile(`^(//\s*)?#define\s+(?:FLUID_SIZE|FUILD_SIZE)\s+(\S+)`)
	wgslConstRe  = regexp.MustCompile(`^(//\s*)?const\s+FLUID_SIZE\s*:\s*f32\s*=\s*([^;\s]+)\s*;`)
	structOpenRe = regexp.MustCompile(`^(?:layout\([^)]*\)\s*)?(?:struct|uniform)\s+(\w+)\s*\{`)
	cMemberRe    = regexp.MustCompile(`^(?:layout\([^)]*\)\s*)?([A-Za-z_][\w:]*(?:<\w+>)?)\s+([\w\s,]+);`)
	wgslMemberRe = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*([\w<>]+)\s*,?$`)
	inputRe      = regexp.MustCompile(`^layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*in\s+(\w+)\s+(\w+)\s*;`)
	vectorTypeRe = regexp.MustCompile(`^(?:simd::)?(?:float|vec)([234])(?:<f32>|f)?$`)
)

// vertexInputs is the struct name given to GLSL vertex inputs, which are
// declared as globals rather than inside a struct.
const vertexInputs = "Vertex"

type input struct {
	location int
	member   Member
}

// ScanFile opens path and scans it.
func ScanFile(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Scan(f, path)
}

// Scan parses declarations from r. name is used in errors and drift
// reports.
func Scan(r io.Reader, name string) (*Header, error) {
	h := &Header{Name: name}
	var (
		active  []string
		current *Struct
		inputs  []input
		lineNo  int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		if m := defineRe.FindStringSubmatch(line); m != nil {
			active, h.Alternatives = collectGrid(m, active, h.Alternatives)
			continue
		}
		if m := wgslConstRe.FindStringSubmatch(line); m != nil {
			active, h.Alternatives = collectGrid(m, active, h.Alternatives)
			continue
		}

		code := stripComment(line)
		if code == "" {
			continue
		}
		if current == nil {
			if m := inputRe.FindStringSubmatch(code); m != nil {
				loc, _ := strconv.Atoi(m[1])
				inputs = append(inputs, input{location: loc, member: Member{Name: m[3], Type: m[2], Components: components(m[2])}})
				continue
			}
			if m := structOpenRe.FindStringSubmatch(code); m != nil {
				current = &Struct{Name: m[1]}
			}
			continue
		}
		if strings.HasPrefix(code, "}") {
			h.Structs = append(h.Structs, *current)
			current = nil
			continue
		}
		members, ok := parseMembers(code)
		if !ok {
			return nil, fmt.Errorf("%s:%d: unrecognised member %q in struct %s", name, lineNo, code, current.Name)
		}
		current.Members = append(current.Members, members...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if current != nil {
		return nil, fmt.Errorf("%s: struct %s is not closed", name, current.Name)
	}
	if len(inputs) > 0 {
		if _, ok := h.Struct(vertexInputs); ok {
			return nil, fmt.Errorf("%s: vertex inputs and struct %s both declared", name, vertexInputs)
		}
		sort.SliceStable(inputs, func(i, j int) bool { return inputs[i].location < inputs[j].location })
		vs := Struct{Name: vertexInputs}
		for i, in := range inputs {
			if i > 0 && inputs[i-1].location == in.location {
				return nil, fmt.Errorf("%s: vertex inputs %s and %s share location %d", name, inputs[i-1].member.Name, in.member.Name, in.location)
			}
			vs.Members = append(vs.Members, in.member)
		}
		h.Structs = append(h.Structs, vs)
	}

	switch len(active) {
	case 0:
		return nil, fmt.Errorf("%s: %w", name, ErrNoGridSize)
	case 1:
	default:
		return nil, fmt.Errorf("%s: %s: %w", name, strings.Join(active, ", "), ErrConflictingGridSize)
	}
	g, err := shadertypes.ParseGridSize(active[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	h.GridSize = g
	return h, nil
}

func collectGrid(m []string, active, alternatives []string) ([]string, []string) {
	if m[1] != "" {
		return active, append(alternatives, m[2])
	}
	return append(active, m[2]), alternatives
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func parseMembers(code string) ([]Member, bool) {
	if m := cMemberRe.FindStringSubmatch(code); m != nil {
		comps := components(m[1])
		var out []Member
		for _, n := range strings.Split(m[2], ",") {
			if n = strings.TrimSpace(n); n != "" {
				out = append(out, Member{Name: n, Type: m[1], Components: comps})
			}
		}
		return out, len(out) > 0
	}
	if m := wgslMemberRe.FindStringSubmatch(code); m != nil {
		return []Member{{Name: m[1], Type: m[2], Components: components(m[2])}}, true
	}
	return nil, false
}

// components returns the vector width of a float type, or 0 when the type
// is not a float scalar or vector.
func components(typ string) int {
	switch typ {
	case "float", "f32":
		return 1
	}
	if m := vectorTypeRe.FindStringSubmatch(typ); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}
