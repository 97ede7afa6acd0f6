// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"strings"

	"github.com/devblok/arena/gfx"
	"github.com/devblok/arena/model"
	"github.com/go-gl/gl/v3.2-compatibility/gl"
)

const floatSize = 4

var _ gfx.Context = (*Window)(nil)

// vertex attributes as laid out by model.Mesh.Flatten
var vertexAttributes = []struct {
	name   string
	size   int32
	offset uintptr
}{
	{"position\x00", 3, 0},
	{"color\x00", 4, 3 * floatSize},
}

var shaderTypes = map[gfx.ShaderType]uint32{
	gfx.VertexShaderType:   gl.VERTEX_SHADER,
	gfx.FragmentShaderType: gl.FRAGMENT_SHADER,
}

// Version implements gfx.Context
func (w *Window) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// Extensions implements gfx.Context
func (w *Window) Extensions() string {
	return gl.GoStr(gl.GetString(gl.EXTENSIONS))
}

// GetError implements gfx.Context
func (w *Window) GetError() gfx.ErrorCode {
	return gfx.ErrorCode(gl.GetError())
}

// CreateShader implements gfx.Context
func (w *Window) CreateShader(kind gfx.ShaderType) uint32 {
	xtype, ok := shaderTypes[kind]
	if !ok {
		return 0
	}
	return gl.CreateShader(xtype)
}

// ShaderSource implements gfx.Context
func (w *Window) ShaderSource(shader uint32, source []byte) {
	csources, free := gl.Strs(string(source) + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csources, nil)
}

// CompileShader implements gfx.Context
func (w *Window) CompileShader(shader uint32) {
	gl.CompileShader(shader)
}

// ShaderStatus implements gfx.Context
func (w *Window) ShaderStatus(shader uint32) (bool, string) {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}

	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	infoLog := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
	return false, strings.TrimRight(infoLog, "\x00")
}

// DeleteShader implements gfx.Context
func (w *Window) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

// CreateProgram implements gfx.Context
func (w *Window) CreateProgram() uint32 {
	return gl.CreateProgram()
}

// AttachShader implements gfx.Context
func (w *Window) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

// LinkProgram implements gfx.Context
func (w *Window) LinkProgram(program uint32) {
	gl.LinkProgram(program)
}

// ProgramStatus implements gfx.Context
func (w *Window) ProgramStatus(program uint32) (bool, string) {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}

	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	infoLog := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))
	return false, strings.TrimRight(infoLog, "\x00")
}

// DeleteProgram implements gfx.Context
func (w *Window) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

// UseProgram implements gfx.Context
func (w *Window) UseProgram(program uint32) {
	gl.UseProgram(program)
	w.program = program
}

// CreateBuffer implements gfx.Context
func (w *Window) CreateBuffer() uint32 {
	var buffer uint32
	gl.GenBuffers(1, &buffer)
	return buffer
}

// BufferData implements gfx.Context
func (w *Window) BufferData(buffer uint32, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*floatSize, gl.Ptr(data), gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// DeleteBuffer implements gfx.Context
func (w *Window) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

// DrawTriangles implements gfx.Context
func (w *Window) DrawTriangles(buffer uint32, count int32) {
	if w.program == 0 || count == 0 {
		return
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
	var enabled []uint32
	for _, attr := range vertexAttributes {
		location := gl.GetAttribLocation(w.program, gl.Str(attr.name))
		if location < 0 {
			continue
		}
		index := uint32(location)
		gl.EnableVertexAttribArray(index)
		gl.VertexAttribPointerWithOffset(index, attr.size, gl.FLOAT, false, model.VertexStride*floatSize, attr.offset)
		enabled = append(enabled, index)
	}

	gl.DrawArrays(gl.TRIANGLES, 0, count)

	for _, index := range enabled {
		gl.DisableVertexAttribArray(index)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Clear implements gfx.Context
func (w *Window) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}
