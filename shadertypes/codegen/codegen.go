// Package codegen writes shader-language declarations of the shared
// layouts, so shaders include generated text instead of a hand-kept copy.
package codegen

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"

	"fluid-demo/shadertypes"
)

// Lang is a target shading language.
type Lang string

const (
	LangMetal Lang = "metal"
	LangGLSL  Lang = "glsl"
	LangWGSL  Lang = "wgsl"
)

var ErrUnknownLang = errors.New("codegen: unknown shading language")

// ParseLang accepts the Lang names plus the "msl" alias.
func ParseLang(s string) (Lang, error) {
	switch l := Lang(strings.ToLower(strings.TrimSpace(s))); l {
	case LangMetal, LangGLSL, LangWGSL:
		return l, nil
	case "msl":
		return LangMetal, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownLang)
}

// Ext is the conventional file extension for generated output.
func (l Lang) Ext() string {
	switch l {
	case LangMetal:
		return ".h"
	case LangGLSL:
		return ".glsl"
	case LangWGSL:
		return ".wgsl"
	}
	return ""
}

type Options struct {
	GridSize    shadertypes.GridSize
	Namespace   string // Metal only
	UniformName string // instance name of the forcing block
	Binding     uint32
}

func DefaultOptions() Options {
	return Options{
		GridSize:    shadertypes.DefaultGridSize,
		Namespace:   "FluidShaderTypes",
		UniformName: "forcing",
		Binding:     shadertypes.ForcingConstantBinding,
	}
}

// GridSizeDefine is the preprocessor/const name shaders read the grid
// resolution from.
const GridSizeDefine = "FLUID_SIZE"

type member struct {
	Name     string
	Type     string
	Location int
	Offset   int
}

type block struct {
	Name    string
	Size    int
	Members []member
}

type model struct {
	Define      string
	GridSize    string
	Namespace   string
	UniformName string
	Binding     uint32
	Vertex      block
	Forcing     block
}

// Generate writes the declarations for lang to w.
func Generate(w io.Writer, lang Lang, opts Options) error {
	tmpl, ok := templates[lang]
	if !ok {
		return fmt.Errorf("%q: %w", lang, ErrUnknownLang)
	}
	if !opts.GridSize.Valid() {
		return fmt.Errorf("codegen: grid size %d: %w", uint16(opts.GridSize), shadertypes.ErrInvalidGridSize)
	}
	def := DefaultOptions()
	if opts.Namespace == "" {
		opts.Namespace = def.Namespace
	}
	if opts.UniformName == "" {
		opts.UniformName = def.UniformName
	}

	m := model{
		Define:      GridSizeDefine,
		GridSize:    fmt.Sprintf("%.1f", opts.GridSize.Float32()),
		Namespace:   opts.Namespace,
		UniformName: opts.UniformName,
		Binding:     opts.Binding,
	}
	var err error
	if m.Vertex, err = toBlock(shadertypes.VertexLayout(), lang); err != nil {
		return err
	}
	if m.Forcing, err = toBlock(shadertypes.ForcingConstantLayout(), lang); err != nil {
		return err
	}
	if err := tmpl.Execute(w, m); err != nil {
		return fmt.Errorf("codegen: %s: %w", lang, err)
	}
	return nil
}

func toBlock(l shadertypes.Layout, lang Lang) (block, error) {
	if err := l.Validate(); err != nil {
		return block{}, err
	}
	b := block{Name: l.Name, Size: l.Size}
	for i, f := range l.Fields {
		typ, err := typeName(lang, f.Components)
		if err != nil {
			return block{}, fmt.Errorf("%s.%s: %w", l.Name, f.GoName, err)
		}
		b.Members = append(b.Members, member{Name: f.Name, Type: typ, Location: i, Offset: f.Offset})
	}
	return b, nil
}

func typeName(lang Lang, components int) (string, error) {
	if components < 1 || components > 4 {
		return "", fmt.Errorf("%d components: %w", components, shadertypes.ErrFieldType)
	}
	switch lang {
	case LangMetal:
		if components == 1 {
			return "float", nil
		}
		return fmt.Sprintf("simd::float%d", components), nil
	case LangGLSL:
		if components == 1 {
			return "float", nil
		}
		return fmt.Sprintf("vec%d", components), nil
	case LangWGSL:
		if components == 1 {
			return "f32", nil
		}
		return fmt.Sprintf("vec%d<f32>", components), nil
	}
	return "", ErrUnknownLang
}

const header = `// Code generated by shadertypes; DO NOT EDIT.
`

var templates = map[Lang]*template.Template{
	LangMetal: template.Must(template.New("metal").Parse(header + `#pragma once

#import <simd/simd.h>

#define {{.Define}} {{.GridSize}}

namespace {{.Namespace}} {
    // {{.Vertex.Size}} bytes
    struct {{.Vertex.Name}} {
{{- range .Vertex.Members}}
        {{.Type}} {{.Name}}; // offset {{.Offset}}
{{- end}}
    };

    // {{.Forcing.Size}} bytes, buffer index {{.Binding}}
    struct {{.Forcing.Name}} {
{{- range .Forcing.Members}}
        {{.Type}} {{.Name}}; // offset {{.Offset}}
{{- end}}
    };
}
`)),

	LangGLSL: template.Must(template.New("glsl").Parse(header + `#define {{.Define}} {{.GridSize}}

#ifdef FLUID_VERTEX_INPUTS
{{- range .Vertex.Members}}
layout(location = {{.Location}}) in {{.Type}} {{.Name}};
{{- end}}
#endif

// uniform block binding {{.Binding}}, {{.Forcing.Size}} bytes
layout(std140) uniform {{.Forcing.Name}} {
{{- range .Forcing.Members}}
    {{.Type}} {{.Name}}; // offset {{.Offset}}
{{- end}}
} {{.UniformName}};
`)),

	LangWGSL: template.Must(template.New("wgsl").Parse(header + `const {{.Define}}: f32 = {{.GridSize}};

struct {{.Vertex.Name}} {
{{- range .Vertex.Members}}
    @location({{.Location}}) {{.Name}}: {{.Type}},
{{- end}}
}

struct {{.Forcing.Name}} {
{{- range .Forcing.Members}}
    {{.Name}}: {{.Type}},
{{- end}}
}

@group(0) @binding({{.Binding}}) var<uniform> {{.UniformName}}: {{.Forcing.Name}};
`)),
}
