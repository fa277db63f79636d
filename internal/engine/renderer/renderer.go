// Package renderer draws traversal frames with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/hullgate/internal/engine/shader"
	"github.com/Faultbox/hullgate/internal/logger"
	"github.com/Faultbox/hullgate/internal/portal"
	"github.com/Faultbox/hullgate/pkg/math"
)

const vertexShader = `
#version 410 core

layout (location = 0) in vec2 aPos;
layout (location = 1) in vec4 aColor;

uniform mat4 uProjection;

out vec4 vColor;

void main() {
	gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
	vColor = aColor;
}
`

const fragmentShader = `
#version 410 core

in vec4 vColor;
uniform float uShade;

out vec4 FragColor;

void main() {
	FragColor = vec4(vColor.rgb * uShade, vColor.a);
}
`

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [3]float32
	// DepthShade darkens each portal level by this factor so deeper hulls
	// read as further away. 1 disables shading.
	DepthShade float32
}

// Renderer uploads a portal.Frame every frame and draws it in pixel space.
type Renderer struct {
	config    Config
	program   *shader.Program
	vao       uint32
	vbo       uint32
	ebo       uint32
	vboSize   int
	eboSize   int
	wireframe bool
}

// New creates a renderer. It must be called after the OpenGL context
// exists.
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return NewWithContext(cfg)
}

// NewWithContext creates a renderer on an already initialized GL
// context, such as one owned by an ImGui backend.
func NewWithContext(cfg Config) (*Renderer, error) {
	if cfg.DepthShade <= 0 || cfg.DepthShade > 1 {
		cfg.DepthShade = 1
	}
	r := &Renderer{config: cfg}

	var err error
	r.program, err = shader.Compile(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.GenBuffers(1, &r.ebo)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	stride := int32(unsafe.Sizeof(portal.Vertex{}))
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, unsafe.Offsetof(portal.Vertex{}.Pos))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 4, gl.FLOAT, false, stride, unsafe.Offsetof(portal.Vertex{}.Color))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases GL resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize sets the pixel size frames are drawn at.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// SetWireframe toggles line rendering of the triangles.
func (r *Renderer) SetWireframe(on bool) { r.wireframe = on }

// Wireframe reports whether line rendering is on.
func (r *Renderer) Wireframe() bool { return r.wireframe }

// Begin clears the target.
func (r *Renderer) Begin() {
	c := r.config.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// Draw uploads f and draws each of its runs. Pixel (0,0) is the top-left
// corner, matching the traversal's screen space.
func (r *Renderer) Draw(f *portal.Frame) {
	if len(f.Indices) == 0 {
		return
	}

	r.program.Use()
	r.program.SetMat4("uProjection", math.Ortho(0, float32(r.config.Width), float32(r.config.Height), 0, -1, 1))

	gl.BindVertexArray(r.vao)
	r.upload(f)

	if r.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	for _, d := range f.Draws {
		r.program.SetFloat("uShade", shadeFor(r.config.DepthShade, d.Depth))
		gl.DrawElementsWithOffset(gl.TRIANGLES, int32(d.IndexCount), gl.UNSIGNED_SHORT, uintptr(d.FirstIndex*2))
	}

	gl.BindVertexArray(0)
}

// End finishes the frame.
func (r *Renderer) End() {
	gl.Flush()
}

// upload streams the frame into the buffers, growing them when needed.
func (r *Renderer) upload(f *portal.Frame) {
	vbytes := len(f.Vertices) * int(unsafe.Sizeof(portal.Vertex{}))
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	if vbytes > r.vboSize {
		r.vboSize = vbytes * 2
		gl.BufferData(gl.ARRAY_BUFFER, r.vboSize, nil, gl.DYNAMIC_DRAW)
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, vbytes, gl.Ptr(f.Vertices))

	ibytes := len(f.Indices) * 2
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	if ibytes > r.eboSize {
		r.eboSize = ibytes * 2
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, r.eboSize, nil, gl.DYNAMIC_DRAW)
	}
	gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, ibytes, gl.Ptr(f.Indices))
}

// shadeFor returns the brightness of geometry depth portals deep.
func shadeFor(factor float32, depth int) float32 {
	s := float32(1)
	for range depth {
		s *= factor
	}
	return s
}
