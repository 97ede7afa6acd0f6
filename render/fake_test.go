// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/devblok/arena/data"
	"github.com/devblok/arena/gfx"
)

type fakeShader struct {
	kind     gfx.ShaderType
	source   []byte
	compiled bool
	deleted  bool
}

type fakeProgram struct {
	attached []uint32
	links    int
	deleted  bool
}

// fakeContext records everything done to it. Sources containing "#error"
// fail to compile, and linking fails while failLink is set.
type fakeContext struct {
	mutex sync.Mutex

	version    string
	extensions string
	currentErr error
	failLink   bool

	nextID   uint32
	shaders  map[uint32]*fakeShader
	programs map[uint32]*fakeProgram
	buffers  map[uint32][]float32
	deleted  []string
	errors   []gfx.ErrorCode
	current  uint32
	draws    int
	clears   int
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		version:  "3.0 Mesa 23.1.0",
		shaders:  make(map[uint32]*fakeShader),
		programs: make(map[uint32]*fakeProgram),
		buffers:  make(map[uint32][]float32),
	}
}

func (c *fakeContext) id() uint32 {
	c.nextID++
	return c.nextID
}

func (c *fakeContext) MakeCurrent() error { return c.currentErr }
func (c *fakeContext) Version() string    { return c.version }
func (c *fakeContext) Extensions() string { return c.extensions }

func (c *fakeContext) GetError() gfx.ErrorCode {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.errors) == 0 {
		return gfx.NoError
	}
	code := c.errors[0]
	c.errors = c.errors[1:]
	return code
}

func (c *fakeContext) raise(code gfx.ErrorCode) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, code)
}

func (c *fakeContext) CreateShader(kind gfx.ShaderType) uint32 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	id := c.id()
	c.shaders[id] = &fakeShader{kind: kind}
	return id
}

func (c *fakeContext) ShaderSource(shader uint32, source []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.shaders[shader].source = append([]byte(nil), source...)
}

func (c *fakeContext) CompileShader(shader uint32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	s := c.shaders[shader]
	s.compiled = !strings.Contains(string(s.source), "#error")
}

func (c *fakeContext) ShaderStatus(shader uint32) (bool, string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.shaders[shader].compiled {
		return true, ""
	}
	return false, "0:1(1): error: syntax error"
}

func (c *fakeContext) DeleteShader(shader uint32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.shaders[shader].deleted = true
	c.deleted = append(c.deleted, fmt.Sprintf("shader %d", shader))
}

func (c *fakeContext) CreateProgram() uint32 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	id := c.id()
	c.programs[id] = &fakeProgram{}
	return id
}

func (c *fakeContext) AttachShader(program, shader uint32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.programs[program].attached = append(c.programs[program].attached, shader)
}

func (c *fakeContext) LinkProgram(program uint32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.programs[program].links++
}

func (c *fakeContext) ProgramStatus(program uint32) (bool, string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.failLink {
		return false, "error: vertex shader lacks `main'"
	}
	for _, shader := range c.programs[program].attached {
		if !c.shaders[shader].compiled {
			return false, "error: shader not compiled"
		}
	}
	return true, ""
}

func (c *fakeContext) DeleteProgram(program uint32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.programs[program].deleted = true
	c.deleted = append(c.deleted, fmt.Sprintf("program %d", program))
}

func (c *fakeContext) UseProgram(program uint32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.current = program
}

func (c *fakeContext) CreateBuffer() uint32 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	id := c.id()
	c.buffers[id] = nil
	return id
}

func (c *fakeContext) BufferData(buffer uint32, data []float32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.buffers[buffer] = append([]float32(nil), data...)
}

func (c *fakeContext) DeleteBuffer(buffer uint32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.buffers, buffer)
	c.deleted = append(c.deleted, fmt.Sprintf("buffer %d", buffer))
}

func (c *fakeContext) DrawTriangles(buffer uint32, count int32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.draws++
}

func (c *fakeContext) Clear(r, g, b, a float32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.clears++
}

func (c *fakeContext) DrawableSize() (int32, int32) { return 640, 480 }

func (c *fakeContext) totalLinks() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	links := 0
	for _, p := range c.programs {
		links += p.links
	}
	return links
}

func (c *fakeContext) deletions() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]string(nil), c.deleted...)
}

// fakeReader answers ReadAll requests from its own goroutines,
// in random order.
type fakeReader struct {
	files map[string]string
	fails map[string]error
	done  chan struct{}

	mutex    sync.Mutex
	requests []string
}

func newFakeReader(files map[string]string) *fakeReader {
	return &fakeReader{
		files: files,
		fails: make(map[string]error),
		done:  make(chan struct{}),
	}
}

func (r *fakeReader) ReadAll(name string, handler data.ReadAllHandler, maxLen int) error {
	r.mutex.Lock()
	r.requests = append(r.requests, name)
	r.mutex.Unlock()

	go func() {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
		if err, ok := r.fails[name]; ok {
			handler.OnError(fmt.Errorf("%s: %w", name, err))
			return
		}
		content, ok := r.files[name]
		if !ok {
			handler.OnError(fmt.Errorf("%s: %w", name, data.ErrOpen))
			return
		}
		if maxLen >= 0 && len(content) > maxLen {
			handler.OnError(fmt.Errorf("%s: %w", name, data.ErrSizeExceeded))
			return
		}
		handler.OnReadAll([]byte(content))
	}()
	return nil
}

func (r *fakeReader) Done() <-chan struct{} {
	return r.done
}

var errDiskOnFire = errors.New("disk on fire")
