// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines the graphics context contract the renderer is built on.
//
// Every Context method is context-bound: it must only be called from the
// thread the context is current on. Failures of individual calls are reported
// through GetError, the same way the underlying API reports them.
package gfx

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	Release()
}

// Context is a single-threaded graphics context.
type Context interface {

	// MakeCurrent binds the context to the calling thread.
	MakeCurrent() error

	// Version returns the API version string, eg. "3.0 Mesa 23.1".
	Version() string

	// Extensions returns space separated extension names.
	Extensions() string

	// GetError pops the oldest recorded error flag, NoError if there is none.
	GetError() ErrorCode

	// CreateShader returns a new shader object, 0 on failure.
	CreateShader(ShaderType) uint32
	ShaderSource(shader uint32, source []byte)
	CompileShader(shader uint32)

	// ShaderStatus returns the compile status and the info log.
	ShaderStatus(shader uint32) (bool, string)
	DeleteShader(shader uint32)

	// CreateProgram returns a new program object, 0 on failure.
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)

	// ProgramStatus returns the link status and the info log.
	ProgramStatus(program uint32) (bool, string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	// CreateBuffer returns a new vertex buffer object, 0 on failure.
	CreateBuffer() uint32
	BufferData(buffer uint32, data []float32)
	DeleteBuffer(buffer uint32)

	// DrawTriangles draws count vertices from buffer with the current program.
	DrawTriangles(buffer uint32, count int32)

	Clear(r, g, b, a float32)

	// DrawableSize returns the size of the surface in pixels.
	DrawableSize() (int32, int32)
}
