package headerscan

import (
	"fmt"
	"strings"

	"fluid-demo/shadertypes"
)

// Drift is one disagreement between a scanned header and its reference.
type Drift struct {
	File    string
	Subject string
	Want    string
	Got     string
}

func (d Drift) String() string {
	return fmt.Sprintf("%s: %s: want %s, got %s", d.File, d.Subject, d.Want, d.Got)
}

// Compare reports how every header differs from the first one.
func Compare(headers []*Header) []Drift {
	if len(headers) < 2 {
		return nil
	}
	ref := headers[0]
	var drifts []Drift
	for _, h := range headers[1:] {
		if h.GridSize != ref.GridSize {
			drifts = append(drifts, Drift{File: h.Name, Subject: "grid size", Want: ref.GridSize.String(), Got: h.GridSize.String()})
		}
		seen := map[string]bool{}
		for _, rs := range ref.Structs {
			name := rs.Canonical()
			seen[name] = true
			s, ok := h.Struct(name)
			if !ok {
				drifts = append(drifts, Drift{File: h.Name, Subject: "struct " + name, Want: signature(rs.Members), Got: "missing"})
				continue
			}
			if want, got := signature(rs.Members), signature(s.Members); want != got {
				drifts = append(drifts, Drift{File: h.Name, Subject: "struct " + name, Want: want, Got: got})
			}
		}
		for _, s := range h.Structs {
			if name := s.Canonical(); !seen[name] {
				drifts = append(drifts, Drift{File: h.Name, Subject: "struct " + name, Want: "absent", Got: signature(s.Members)})
			}
		}
	}
	return drifts
}

// CheckLayouts reports where h disagrees with the Go layouts and the
// expected grid size. Structs in h that have no Go layout are ignored.
func CheckLayouts(h *Header, layouts []shadertypes.Layout, grid shadertypes.GridSize) []Drift {
	var drifts []Drift
	if h.GridSize != grid {
		drifts = append(drifts, Drift{File: h.Name, Subject: "grid size", Want: grid.String(), Got: h.GridSize.String()})
	}
	for _, l := range layouts {
		want := layoutSignature(l)
		s, ok := h.Struct(l.Name)
		if !ok {
			drifts = append(drifts, Drift{File: h.Name, Subject: "struct " + l.Name, Want: want, Got: "missing"})
			continue
		}
		if got := signature(s.Members); got != want {
			drifts = append(drifts, Drift{File: h.Name, Subject: "struct " + l.Name, Want: want, Got: got})
		}
	}
	return drifts
}

// signature renders members as "a:2 b:2 force:2"; any reorder, rename or
// width change alters it.
func signature(members []Member) string {
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = fmt.Sprintf("%s:%d", m.Name, m.Components)
	}
	return strings.Join(parts, " ")
}

func layoutSignature(l shadertypes.Layout) string {
	parts := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		parts[i] = fmt.Sprintf("%s:%d", f.Name, f.Components)
	}
	return strings.Join(parts, " ")
}
