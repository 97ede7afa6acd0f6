// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model

import (
	"fmt"

	"github.com/devblok/arena/util/collada"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Decode reads a Collada document and converts its first
// geometry to the engine's mesh.
func Decode(fileContents []byte) (*Mesh, error) {
	doc, err := collada.Decode(fileContents)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if len(doc.Geometries) == 0 {
		return nil, fmt.Errorf("%w: no geometry", ErrFormat)
	}

	geometry := doc.Geometries[0]
	mesh := &geometry.Mesh
	positions, err := mesh.Positions()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, geometry.Name, err)
	}
	count, err := mesh.Triangles.Vertices()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, geometry.Name, err)
	}

	// the position is at the offset of the VERTEX input of every tuple
	vertex, _ := mesh.Triangles.Input("VERTEX")
	stride, offset := mesh.Triangles.Stride(), int(vertex.Offset)
	floats := positions.Floats.Data

	vertices := make([]Vertex, 0, count)
	for idx := 0; idx < count; idx++ {
		i := mesh.Triangles.Index[idx*stride+offset]
		if 3*i+3 > len(floats) {
			return nil, fmt.Errorf("%w: %s: position index %d out of range", ErrFormat, geometry.Name, i)
		}
		vertices = append(vertices, Vertex{
			Pos:   glm.Vec3{floats[3*i], floats[3*i+1], floats[3*i+2]},
			Color: DefaultColor,
		})
	}

	return &Mesh{
		Name:     geometry.Name,
		Vertices: vertices,
	}, nil
}
