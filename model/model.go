// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package model holds the engine's mesh representation and its importers.
package model

import (
	"errors"

	glm "github.com/go-gl/mathgl/mgl32"
)

// ErrFormat is returned for model files that can't be imported.
var ErrFormat = errors.New("unsupported model format")

// VertexStride is the number of floats a vertex takes when flattened.
const VertexStride = 7

// DefaultColor is given to vertices the file has no colour for.
var DefaultColor = glm.Vec4{1.0, 1.0, 0.0, 1.0}

// Vertex is a model vertex
type Vertex struct {
	Pos   glm.Vec3
	Color glm.Vec4
}

// Mesh is an imported triangle list.
type Mesh struct {
	Name     string
	Vertices []Vertex
}

// Flatten interleaves the vertices into position and colour
// floats, VertexStride per vertex, ready for upload.
func (m *Mesh) Flatten() []float32 {
	out := make([]float32, 0, len(m.Vertices)*VertexStride)
	for _, v := range m.Vertices {
		out = append(out, v.Pos[:]...)
		out = append(out, v.Color[:]...)
	}
	return out
}

// Bounds returns the corners of the mesh's axis aligned bounding box.
func (m *Mesh) Bounds() (min, max glm.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min, max = m.Vertices[0].Pos, m.Vertices[0].Pos
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Pos[i] < min[i] {
				min[i] = v.Pos[i]
			}
			if v.Pos[i] > max[i] {
				max[i] = v.Pos[i]
			}
		}
	}
	return
}
