// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"fmt"
	"sync"

	"github.com/devblok/arena/gfx"
)

// Mesh is a vertex buffer ready to be drawn.
type Mesh struct {
	handle Handle
	count  int32
	system *System
	once   sync.Once
}

// NewMesh uploads interleaved vertex data, stride floats per vertex.
// Needs an active context, from a job or a frame.
func (s *System) NewMesh(vertices []float32, stride int) (*Mesh, error) {
	if stride <= 0 || len(vertices)%stride != 0 {
		return nil, fmt.Errorf("mesh: %d floats do not split into vertices of %d", len(vertices), stride)
	}

	var mesh *Mesh
	err := s.jobs.Exec(func(ctx gfx.Context) error {
		id := ctx.CreateBuffer()
		if id == 0 {
			return fmt.Errorf("can't create buffer: %w", lastError(ctx))
		}
		mesh = &Mesh{
			handle: s.arena.insert(kindBuffer, id),
			count:  int32(len(vertices) / stride),
			system: s,
		}

		flushErrors(ctx)
		ctx.BufferData(id, vertices)
		if code := ctx.GetError(); code != gfx.NoError {
			return fmt.Errorf("buffer upload failed: %w", code)
		}
		return nil
	})
	if err != nil {
		if mesh != nil {
			mesh.Release()
		}
		return nil, fmt.Errorf("mesh: %w", err)
	}
	return mesh, nil
}

// Count returns the number of vertices.
func (m *Mesh) Count() int32 {
	return m.count
}

// ID returns the buffer's raw name.
func (m *Mesh) ID() (uint32, error) {
	id := m.system.arena.id(m.handle)
	if id == 0 {
		return 0, fmt.Errorf("mesh %w", ErrExpired)
	}
	return id, nil
}

// Release gives up the mesh.
func (m *Mesh) Release() {
	m.once.Do(func() {
		m.system.release(m.handle)
	})
}
