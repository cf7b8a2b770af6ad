package codegen

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluid-demo/shadertypes"
)

const wantMetal = `// Code generated by shadertypes; DO NOT EDIT.
#pragma once

#import <simd/simd.h>

#define FLUID_SIZE 320.0

namespace FluidShaderTypes {
    // 16 bytes
    struct Vertex {
        simd::float2 position; // offset 0
        simd::float2 texcoord; // offset 8
    };

    // 24 bytes, buffer index 0
    struct ForcingConstant {
        simd::float2 a; // offset 0
        simd::float2 b; // offset 8
        simd::float2 force; // offset 16
    };
}
`

func generate(t *testing.T, lang Lang, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, lang, opts))
	return buf.String()
}

func TestGenerateMetal(t *testing.T) {
	assert.Equal(t, wantMetal, generate(t, LangMetal, DefaultOptions()))
}

func TestGenerateGLSL(t *testing.T) {
	opts := DefaultOptions()
	opts.GridSize = shadertypes.Grid512
	out := generate(t, LangGLSL, opts)

	assert.Contains(t, out, "#define FLUID_SIZE 512.0\n")
	assert.Contains(t, out, "layout(location = 0) in vec2 position;\n")
	assert.Contains(t, out, "layout(location = 1) in vec2 texcoord;\n")
	assert.Contains(t, out, "layout(std140) uniform ForcingConstant {\n    vec2 a; // offset 0\n    vec2 b; // offset 8\n    vec2 force; // offset 16\n} forcing;\n")
}

func TestGenerateWGSL(t *testing.T) {
	opts := DefaultOptions()
	opts.GridSize = shadertypes.Grid128
	opts.Binding = 2
	opts.UniformName = "impulse"
	out := generate(t, LangWGSL, opts)

	assert.Contains(t, out, "const FLUID_SIZE: f32 = 128.0;\n")
	assert.Contains(t, out, "struct Vertex {\n    @location(0) position: vec2<f32>,\n    @location(1) texcoord: vec2<f32>,\n}\n")
	assert.Contains(t, out, "struct ForcingConstant {\n    a: vec2<f32>,\n    b: vec2<f32>,\n    force: vec2<f32>,\n}\n")
	assert.Contains(t, out, "@group(0) @binding(2) var<uniform> impulse: ForcingConstant;\n")
}

func TestGenerateFillsEmptyOptions(t *testing.T) {
	out := generate(t, LangMetal, Options{GridSize: shadertypes.Grid320})
	assert.Equal(t, wantMetal, out)
}

func TestGenerateErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Generate(&buf, Lang("hlsl"), DefaultOptions()), ErrUnknownLang)
	assert.ErrorIs(t, Generate(&buf, LangGLSL, Options{GridSize: 300}), shadertypes.ErrInvalidGridSize)
	assert.Zero(t, buf.Len())

	err := Generate(failingWriter{}, LangWGSL, DefaultOptions())
	assert.ErrorIs(t, err, errWrite)
}

func TestParseLang(t *testing.T) {
	for in, want := range map[string]Lang{"metal": LangMetal, "MSL": LangMetal, " glsl ": LangGLSL, "wgsl": LangWGSL} {
		got, err := ParseLang(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseLang("spirv")
	assert.ErrorIs(t, err, ErrUnknownLang)

	assert.Equal(t, ".h", LangMetal.Ext())
	assert.Equal(t, ".wgsl", LangWGSL.Ext())
}

var errWrite = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }
