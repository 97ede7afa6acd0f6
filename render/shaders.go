// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/devblok/arena/gfx"
)

var (
	_ gfx.Releasable = (*Shader)(nil)
	_ gfx.Releasable = (*Program)(nil)
	_ gfx.Releasable = (*Mesh)(nil)
)

// Shader is a compiled shader stage.
type Shader struct {
	handle Handle
	name   string
	kind   gfx.ShaderType
	system *System
	once   sync.Once
}

// newShader creates an empty shader object. Needs an active context.
func (s *System) newShader(name string, kind gfx.ShaderType) (*Shader, error) {
	var shader *Shader
	err := s.jobs.Exec(func(ctx gfx.Context) error {
		id := ctx.CreateShader(kind)
		if id == 0 {
			return fmt.Errorf("can't create shader: %w", lastError(ctx))
		}
		shader = &Shader{
			handle: s.arena.insert(kindShader, id),
			name:   name,
			kind:   kind,
			system: s,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return shader, nil
}

// Name returns the name the shader was loaded as.
func (sh *Shader) Name() string {
	return sh.name
}

// Type returns the shader stage.
func (sh *Shader) Type() gfx.ShaderType {
	return sh.kind
}

// ID returns the shader's raw name.
func (sh *Shader) ID() (uint32, error) {
	id := sh.system.arena.id(sh.handle)
	if id == 0 {
		return 0, fmt.Errorf("shader %w", ErrExpired)
	}
	return id, nil
}

// Release gives up this reference to the shader. The shader is deleted on
// the context thread once nothing refers to it.
func (sh *Shader) Release() {
	sh.once.Do(func() {
		sh.system.release(sh.handle)
	})
}

// compile compiles the shader from source. Needs an active context.
func (sh *Shader) compile(source []byte) error {
	return sh.system.jobs.Exec(func(ctx gfx.Context) error {
		id, err := sh.ID()
		if err != nil {
			return err
		}

		// Clear any previous errors so we know whether any error flags are
		// from initializing this shader.
		flushErrors(ctx)

		ctx.ShaderSource(id, source)
		ctx.CompileShader(id)
		if ok, infoLog := ctx.ShaderStatus(id); !ok {
			return fmt.Errorf("shader compilation failed: %s", infoLog)
		}

		if code := ctx.GetError(); code != gfx.NoError {
			return fmt.Errorf("shader initialization failed: %w", code)
		}
		return nil
	})
}

// Program is a linked shader program.
type Program struct {
	handle Handle
	name   string
	system *System
	once   sync.Once
}

// Name returns the program name.
func (p *Program) Name() string {
	return p.name
}

// ID returns the program's raw name.
func (p *Program) ID() (uint32, error) {
	id := p.system.arena.id(p.handle)
	if id == 0 {
		return 0, fmt.Errorf("shader program %w", ErrExpired)
	}
	return id, nil
}

// Release gives up the program, along with its hold on its stages.
func (p *Program) Release() {
	p.once.Do(func() {
		p.system.release(p.handle)
	})
}

// linkProgram creates and links a program from stages. Needs an active context.
func (s *System) linkProgram(name string, stages []*Shader) (*Program, error) {
	var program *Program
	err := s.jobs.Exec(func(ctx gfx.Context) error {
		id := ctx.CreateProgram()
		if id == 0 {
			return fmt.Errorf("can't create shader program: %w", lastError(ctx))
		}
		program = &Program{
			handle: s.arena.insert(kindProgram, id),
			name:   name,
			system: s,
		}

		// Clear any previous errors so we know whether any error flags are
		// from initializing this program.
		flushErrors(ctx)

		for _, stage := range stages {
			// the reference keeps the stage alive for as long as the program
			if !s.arena.depend(program.handle, stage.handle) {
				return fmt.Errorf("%s: shader %w", stage.name, ErrExpired)
			}
			sid, err := stage.ID()
			if err != nil {
				return fmt.Errorf("%s: %w", stage.name, err)
			}
			ctx.AttachShader(id, sid)
		}

		ctx.LinkProgram(id)
		if ok, infoLog := ctx.ProgramStatus(id); !ok {
			return fmt.Errorf("shader program linking failed: %s", infoLog)
		}

		if code := ctx.GetError(); code != gfx.NoError {
			return fmt.Errorf("shader program initialization failed: %w", code)
		}
		return nil
	})
	if err != nil {
		if program != nil {
			program.Release()
		}
		return nil, &BuildError{Name: fmt.Sprintf("shader program '%s'", name), Err: err}
	}
	return program, nil
}

// lastError returns the pending error flag, or a generic error if there is none.
func lastError(ctx gfx.Context) error {
	if code := ctx.GetError(); code != gfx.NoError {
		return code
	}
	return errors.New("no error flag set")
}
