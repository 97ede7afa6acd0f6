// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"github.com/devblok/arena/data"
	"github.com/devblok/arena/model"
	"github.com/devblok/arena/render"
	"github.com/devblok/arena/system"
	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

const (
	playgroundModel = "models/cube.dae"
	maxModelSize    = 4 * 1024 * 1024
)

var clearColor = mgl32.Vec3{0, 0.25, 0.5}

// playground clears the screen and draws a model once it has loaded.
type playground struct {
	// only touched on the main thread
	mesh *render.Mesh
}

func newPlayground(sys *system.System) *playground {
	p := &playground{}
	if err := sys.Data().ReadAll(playgroundModel, data.ReadAllFuncs{
		Done: func(contents []byte) error {
			return p.upload(sys.Render(), contents)
		},
		Fail: func(err error) {
			log.Warnf("can't load model: %v", err)
		},
	}, maxModelSize); err != nil {
		log.Warnf("can't request model: %v", err)
	}
	return p
}

// upload decodes the model on the loader goroutine and hands the
// vertex data over to the render thread.
func (p *playground) upload(rs *render.System, contents []byte) error {
	m, err := model.Decode(contents)
	if err != nil {
		return err
	}
	min, max := m.Bounds()
	log.Debugf("model %s: %d vertices, bounds %v %v", m.Name, len(m.Vertices), min, max)

	vertices := m.Flatten()
	return rs.Dispatch(func(f *render.Frame) error {
		mesh, err := f.System().NewMesh(vertices, model.VertexStride)
		if err != nil {
			return err
		}
		if p.mesh != nil {
			p.mesh.Release()
		}
		p.mesh = mesh
		return nil
	})
}

func (p *playground) Update(sys *system.System, deltaMs uint32) system.UpdateResult {
	return system.Continue
}

func (p *playground) Render(f *render.Frame, deltaMs uint32) error {
	f.Clear(clearColor)
	if p.mesh == nil {
		return nil
	}
	program := f.System().Programs().Get("unlit")
	if program == nil {
		return nil
	}
	return f.Draw(program, p.mesh)
}

func (p *playground) OnQuit(sys *system.System) {
	if p.mesh != nil {
		p.mesh.Release()
		p.mesh = nil
	}
}
