// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devblok/arena/core"
	"github.com/devblok/arena/data"
	"github.com/devblok/arena/gfx"
	"github.com/devblok/arena/utility/kar"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	unlitVert = "#version 130\nin vec3 position;\nvoid main() { gl_Position = vec4(position, 1.0); }\n"
	unlitFrag = "#version 130\nout vec4 color;\nvoid main() { color = vec4(1.0); }\n"
)

func shaderFiles() map[string]string {
	return map[string]string{
		ShaderNamePrefix + "unlit.vert": unlitVert,
		ShaderNamePrefix + "unlit.frag": unlitFrag,
	}
}

func openTestLoader(t *testing.T, files map[string]string) *data.Loader {
	t.Helper()
	return openTestLoaderWith(t, files, core.DefaultConfiguration.Data)
}

func openTestLoaderWith(t *testing.T, files map[string]string, cfg core.DataConfiguration) *data.Loader {
	t.Helper()
	builder, err := kar.NewBuilder(kar.Header{Author: "test", Version: 1})
	require.NoError(t, err)
	defer builder.Close()
	for name, content := range files {
		require.NoError(t, builder.Add(name, strings.NewReader(content)))
	}

	path := filepath.Join(t.TempDir(), data.DataFilename)
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = builder.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	loader, err := data.Open(path, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { loader.Close() })
	return loader
}

func newTestSystem(t *testing.T) (*System, *fakeContext) {
	t.Helper()
	ctx := newFakeContext()
	sys, err := NewSystem(ctx, openTestLoader(t, shaderFiles()), DefaultPrograms)
	require.NoError(t, err)
	return sys, ctx
}

func TestSystemLinksProgramOnce(t *testing.T) {
	sys, ctx := newTestSystem(t)

	assert.Equal(t, Idle, sys.Mode())
	assert.Equal(t, []string{"unlit"}, sys.Programs().Names())
	assert.Equal(t, 1, ctx.totalLinks())

	program := sys.Programs().Get("unlit")
	require.NotNil(t, program)
	assert.Equal(t, "unlit", program.Name())
	id, err := program.ID()
	require.NoError(t, err)

	attached := ctx.programs[id].attached
	require.Len(t, attached, 2)
	var sources []string
	for _, shader := range attached {
		sources = append(sources, string(ctx.shaders[shader].source))
	}
	assert.Equal(t, []string{unlitVert, unlitFrag}, sources)
	assert.Equal(t, gfx.VertexShaderType, ctx.shaders[attached[0]].kind)
	assert.Equal(t, gfx.FragmentShaderType, ctx.shaders[attached[1]].kind)
	assert.Empty(t, ctx.deletions())
}

func TestSystemSharedStageLoadsOnce(t *testing.T) {
	reader := newFakeReader(shaderFiles())
	ctx := newFakeContext()

	specs := []ProgramSpec{
		{Name: "unlit", Stages: []string{"unlit.vert", "unlit.frag"}},
		{Name: "unlit2", Stages: []string{"unlit.vert", "unlit.frag"}},
	}
	sys, err := NewSystem(ctx, reader, specs)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		ShaderNamePrefix + "unlit.vert",
		ShaderNamePrefix + "unlit.frag",
	}, reader.requests)
	assert.Equal(t, 2, ctx.totalLinks())
	assert.Len(t, ctx.shaders, 2)
	assert.Equal(t, []string{"unlit", "unlit2"}, sys.Programs().Names())
}

func TestSystemMissingShader(t *testing.T) {
	files := shaderFiles()
	delete(files, ShaderNamePrefix+"unlit.frag")
	ctx := newFakeContext()

	sys, err := NewSystem(ctx, openTestLoader(t, files), DefaultPrograms)
	assert.Nil(t, sys)
	require.Error(t, err)
	assert.True(t, errors.Is(err, data.ErrOpen))
	assert.Contains(t, err.Error(), "unlit.frag")
	assert.Equal(t, 0, ctx.totalLinks())
	assert.ElementsMatch(t, []string{"shader 1", "shader 2"}, ctx.deletions())
}

func TestSystemCompileFailure(t *testing.T) {
	files := shaderFiles()
	files[ShaderNamePrefix+"unlit.frag"] = "#version 130\n#error broken\n"
	ctx := newFakeContext()

	_, err := NewSystem(ctx, openTestLoader(t, files), DefaultPrograms)
	require.Error(t, err)

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, ShaderNamePrefix+"unlit.frag", buildErr.Name)
	assert.True(t, errors.Is(err, ErrBuild))
	assert.Contains(t, err.Error(), "syntax error")
	assert.Equal(t, 0, ctx.totalLinks())
	assert.Len(t, ctx.deletions(), 2)
}

func TestSystemLinkFailure(t *testing.T) {
	ctx := newFakeContext()
	ctx.failLink = true

	_, err := NewSystem(ctx, openTestLoader(t, shaderFiles()), DefaultPrograms)
	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, "shader program 'unlit'", buildErr.Name)
	assert.Contains(t, err.Error(), "linking failed")

	assert.Equal(t, 1, ctx.totalLinks())
	assert.ElementsMatch(t, []string{"program 3", "shader 1", "shader 2"}, ctx.deletions())
}

func TestSystemManyStagesUnbufferedLoader(t *testing.T) {
	files := shaderFiles()
	stages := []string{"unlit.frag"}
	for i := 0; i < 40; i++ {
		name := fmt.Sprintf("stage%02d.vert", i)
		files[ShaderNamePrefix+name] = unlitVert
		stages = append(stages, name)
	}
	cfg := core.DefaultConfiguration.Data
	cfg.QueueSize = 0
	loader := openTestLoaderWith(t, files, cfg)

	ctx := newFakeContext()
	result := make(chan error, 1)
	go func() {
		_, err := NewSystem(ctx, loader, []ProgramSpec{{Name: "many", Stages: stages}})
		result <- err
	}()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("NewSystem did not return")
	}
	assert.Equal(t, 1, ctx.totalLinks())
}

func TestSystemLinkExpiredStage(t *testing.T) {
	sys, ctx := newTestSystem(t)
	links := ctx.totalLinks()

	require.NoError(t, sys.Render(func(f *Frame) error {
		stage, err := sys.newShader(ShaderNamePrefix+"gone.vert", gfx.VertexShaderType)
		require.NoError(t, err)
		stage.Release()

		_, err = sys.linkProgram("stale", []*Shader{stage})
		var buildErr *BuildError
		require.True(t, errors.As(err, &buildErr))
		assert.True(t, errors.Is(err, ErrExpired))
		return nil
	}))

	assert.Equal(t, links, ctx.totalLinks())
	assert.Subset(t, ctx.deletions(), []string{"shader 4", "program 5"})
}

func TestSystemUnknownStage(t *testing.T) {
	ctx := newFakeContext()
	specs := []ProgramSpec{{Name: "odd", Stages: []string{"odd.geom"}}}

	_, err := NewSystem(ctx, newFakeReader(nil), specs)
	assert.Error(t, err)
	assert.Empty(t, ctx.shaders)
}

func TestSystemUnsupportedVersion(t *testing.T) {
	ctx := newFakeContext()
	ctx.version = "2.1 Mesa 10.0"

	_, err := NewSystem(ctx, openTestLoader(t, shaderFiles()), DefaultPrograms)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported OpenGL version: 2.1")
	assert.Empty(t, ctx.shaders)
}

func TestSystemDeferredDestruction(t *testing.T) {
	sys, ctx := newTestSystem(t)

	// released while idle, deletion waits for the next frame
	sys.Programs().Get("unlit").Release()
	assert.Empty(t, ctx.deletions())

	require.NoError(t, sys.Render(func(f *Frame) error {
		assert.Equal(t, []string{"program 3", "shader 1", "shader 2"}, ctx.deletions())
		return nil
	}))

	_, err := sys.Programs().Get("unlit").ID()
	assert.True(t, errors.Is(err, ErrExpired))
}

func TestSystemMesh(t *testing.T) {
	sys, ctx := newTestSystem(t)
	triangle := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}

	_, err := sys.NewMesh(triangle, 3)
	assert.True(t, errors.Is(err, ErrNotActive))

	var mesh *Mesh
	require.NoError(t, sys.Render(func(f *Frame) error {
		var err error
		mesh, err = f.System().NewMesh(triangle, 3)
		if err != nil {
			return err
		}
		f.Clear(mgl32.Vec3{0, 0.25, 0.5})
		assert.Equal(t, mgl32.Vec2{640, 480}, f.SurfaceSize())
		return f.Draw(f.System().Programs().Get("unlit"), mesh)
	}))

	assert.Equal(t, int32(3), mesh.Count())
	assert.Equal(t, 1, ctx.draws)
	assert.Equal(t, 1, ctx.clears)
	id, err := mesh.ID()
	require.NoError(t, err)
	assert.Equal(t, triangle, ctx.buffers[id])

	program, err := sys.Programs().Get("unlit").ID()
	require.NoError(t, err)
	assert.Equal(t, program, ctx.current)

	require.NoError(t, sys.Render(func(f *Frame) error {
		mesh.Release()
		assert.Equal(t, []string{fmt.Sprintf("buffer %d", id)}, ctx.deletions())
		return nil
	}))

	_, err = sys.NewMesh(triangle[:4], 3)
	assert.Error(t, err)
}

func TestSystemDispatchFromLoader(t *testing.T) {
	files := shaderFiles()
	files["models/triangle"] = "tri"
	ctx := newFakeContext()
	loader := openTestLoader(t, files)
	sys, err := NewSystem(ctx, loader, DefaultPrograms)
	require.NoError(t, err)

	dispatched := make(chan error, 1)
	var mesh *Mesh
	require.NoError(t, loader.ReadAll("models/triangle", data.ReadAllFuncs{
		Done: func(payload []byte) error {
			err := sys.Dispatch(func(f *Frame) error {
				var err error
				mesh, err = f.System().NewMesh(make([]float32, 3*len(payload)), 3)
				return err
			})
			dispatched <- err
			return err
		},
		Fail: func(err error) {
			dispatched <- err
		},
	}, 1024))

	select {
	case err := <-dispatched:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loader never answered")
	}
	assert.Nil(t, mesh, "mesh created off the context thread")

	require.NoError(t, sys.Render(func(f *Frame) error {
		require.NotNil(t, mesh)
		return nil
	}))
	assert.Equal(t, int32(3), mesh.Count())
}

func TestSystemDestroy(t *testing.T) {
	sys, ctx := newTestSystem(t)

	sys.Destroy()
	assert.Equal(t, Dead, sys.Mode())
	assert.Equal(t, []string{"program 3", "shader 1", "shader 2"}, ctx.deletions())

	ran := false
	assert.NoError(t, sys.Dispatch(func(*Frame) error {
		ran = true
		return nil
	}))
	assert.Equal(t, ErrContextDead, sys.Render(func(*Frame) error { return nil }))
	assert.False(t, ran)
}

func TestSystemRenderNested(t *testing.T) {
	sys, _ := newTestSystem(t)

	require.NoError(t, sys.Render(func(f *Frame) error {
		assert.Equal(t, ErrRecursiveActivation, sys.Render(func(*Frame) error { return nil }))
		return nil
	}))
}

func TestFlushErrors(t *testing.T) {
	ctx := newFakeContext()
	ctx.raise(gfx.InvalidValue)
	ctx.raise(gfx.OutOfMemory)

	flushErrors(ctx)
	assert.Equal(t, gfx.NoError, ctx.GetError())

	for i := 0; i < maxFlushedErrors; i++ {
		ctx.raise(gfx.InvalidOperation)
	}
	assert.Panics(t, func() { flushErrors(ctx) })
}

func TestParseVersion(t *testing.T) {
	for _, tc := range []struct {
		version      string
		major, minor int
		ok           bool
	}{
		{"3.0 Mesa 23.1.0", 3, 0, true},
		{"4.6.0 NVIDIA 535.54.03", 4, 6, true},
		{"3.3", 3, 3, true},
		{"OpenGL ES 3.2", 0, 0, false},
		{"", 0, 0, false},
	} {
		major, minor, err := parseVersion(tc.version)
		if !tc.ok {
			assert.Error(t, err, tc.version)
			continue
		}
		require.NoError(t, err, tc.version)
		assert.Equal(t, tc.major, major, tc.version)
		assert.Equal(t, tc.minor, minor, tc.version)
	}
}

func TestCheckVersion(t *testing.T) {
	ctx := newFakeContext()

	ctx.version = "4.6 (Core Profile) Mesa 23.1.0"
	assert.NoError(t, checkVersion(ctx))

	ctx.extensions = "GL_ARB_debug_output GL_ARB_compatibility"
	assert.NoError(t, checkVersion(ctx))

	ctx.version = ""
	assert.Error(t, checkVersion(ctx))

	ctx.version = "1.4"
	assert.Error(t, checkVersion(ctx))
}
