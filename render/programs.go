// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"fmt"
	"sort"

	"github.com/devblok/arena/gfx"
	log "github.com/sirupsen/logrus"
)

// Where shader sources live in the data archive, and how big they may be.
const (
	ShaderNamePrefix = "shaders/glsl-1.30/"
	MaxShaderSize    = 64 * 1024
)

// ProgramSpec names a program and the shader stages it's linked from.
// Stage names are relative to ShaderNamePrefix, their suffix tells the stage.
type ProgramSpec struct {
	Name   string
	Stages []string
}

// DefaultPrograms are all shader programs the game uses.
var DefaultPrograms = []ProgramSpec{
	{Name: "unlit", Stages: []string{"unlit.vert", "unlit.frag"}},
}

// Programs is the set of linked shader programs.
type Programs struct {
	programs map[string]*Program
}

// Get returns the named program, nil if there is no such program.
func (p *Programs) Get(name string) *Program {
	if p == nil {
		return nil
	}
	return p.programs[name]
}

// Names returns the sorted program names.
func (p *Programs) Names() []string {
	names := make([]string, 0, len(p.programs))
	for name := range p.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Release releases every program.
func (p *Programs) Release() {
	if p == nil {
		return
	}
	for _, program := range p.programs {
		program.Release()
	}
}

// loadShaders loads and compiles the named shaders. Sources are requested
// all at once and compiled in whatever order they arrive.
// Needs an active context.
func (s *System) loadShaders(reader Reader, names []string) (map[string]*Shader, error) {
	log.Debug("compiling shaders...")

	var (
		shaders  = make(map[string]*Shader, len(names))
		byHandle = make(map[Handle]*Shader, len(names))
		barrier  = NewBarrier(reader, MaxShaderSize)
	)
	releaseAll := func() {
		for _, shader := range shaders {
			shader.Release()
		}
	}

	for _, name := range names {
		if _, ok := shaders[name]; ok {
			continue
		}
		kind := gfx.ShaderTypeOf(name)
		if kind == gfx.UnknownShaderType {
			releaseAll()
			return nil, fmt.Errorf("%s%s: unknown shader type", ShaderNamePrefix, name)
		}

		log.Tracef("shader: %s", name)
		fullName := ShaderNamePrefix + name
		shader, err := s.newShader(fullName, kind)
		if err != nil {
			releaseAll()
			return nil, err
		}
		shaders[name] = shader
		byHandle[shader.handle] = shader

		if err := barrier.Add(fullName, shader.handle); err != nil {
			releaseAll()
			return nil, err
		}
	}

	// Compile sources as they become available
	if err := barrier.Wait(func(key Handle, name string, source []byte) error {
		return byHandle[key].compile(source)
	}); err != nil {
		releaseAll()
		return nil, err
	}
	return shaders, nil
}

// loadPrograms loads every stage the specs need, then links the programs.
// Needs an active context.
func (s *System) loadPrograms(reader Reader, specs []ProgramSpec) (*Programs, error) {
	var names []string
	for _, spec := range specs {
		names = append(names, spec.Stages...)
	}

	shaders, err := s.loadShaders(reader, names)
	if err != nil {
		return nil, err
	}
	// programs hold their own references to the stages
	defer func() {
		for _, shader := range shaders {
			shader.Release()
		}
	}()

	log.Debug("linking shader programs...")

	programs := &Programs{programs: make(map[string]*Program, len(specs))}
	for _, spec := range specs {
		log.Tracef("program: %s", spec.Name)

		stages := make([]*Shader, 0, len(spec.Stages))
		for _, name := range spec.Stages {
			stages = append(stages, shaders[name])
		}

		program, err := s.linkProgram(spec.Name, stages)
		if err != nil {
			programs.Release()
			return nil, err
		}
		programs.programs[spec.Name] = program
	}
	return programs, nil
}
