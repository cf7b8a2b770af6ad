package io

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"fluid-demo/shadertypes"
)

// QuadDocument builds a glTF document around a vertex array. TEXCOORD_0
// reads the raw interleaved Vertex bytes through a bufferView with the GPU
// stride, so any glTF viewer exercises the same offsets the shaders use.
// glTF requires 3D positions; POSITION is written separately with z = 0.
func QuadDocument(name string, vs []shadertypes.Vertex) (*gltf.Document, error) {
	if len(vs) == 0 {
		return nil, fmt.Errorf("gltf export %q: no vertices", name)
	}
	doc := gltf.NewDocument()

	positions := make([][3]float32, len(vs))
	for i, v := range vs {
		positions[i] = [3]float32{v.Position.X, v.Position.Y, 0}
	}
	posIdx := modeler.WritePosition(doc, positions)

	// Interleaved vertex data, appended to the same buffer.
	raw := shadertypes.EncodeVertices(nil, vs)
	bufIdx := len(doc.Buffers) - 1
	buf := doc.Buffers[bufIdx]
	for len(buf.Data)%4 != 0 {
		buf.Data = append(buf.Data, 0)
	}
	offset := len(buf.Data)
	buf.Data = append(buf.Data, raw...)
	buf.ByteLength = len(buf.Data)

	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
		Buffer:     bufIdx,
		ByteOffset: offset,
		ByteLength: len(raw),
		ByteStride: shadertypes.VertexStride,
		Target:     gltf.TargetArrayBuffer,
	})
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		Name:          "texcoord",
		BufferView:    gltf.Index(len(doc.BufferViews) - 1),
		ByteOffset:    shadertypes.VertexTexcoordOffset,
		ComponentType: gltf.ComponentFloat,
		Count:         len(vs),
		Type:          gltf.AccessorVec2,
	})
	uvIdx := len(doc.Accessors) - 1

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Attributes: gltf.PrimitiveAttributes{
				"POSITION":   posIdx,
				"TEXCOORD_0": uvIdx,
			},
			Mode: gltf.PrimitiveTriangleStrip,
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	return doc, nil
}

// ExportGLB writes vs as a binary glTF file.
func ExportGLB(path, name string, vs []shadertypes.Vertex) error {
	doc, err := QuadDocument(name, vs)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("gltf save %q: %w", path, err)
	}
	return nil
}
