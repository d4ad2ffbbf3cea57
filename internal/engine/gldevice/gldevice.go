// Package gldevice draws meshes with OpenGL 4.1 core.
package gldevice

import (
	_ "embed"
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/internal/engine/mesh"
	"github.com/Faultbox/objmesh/internal/engine/shader"
	"github.com/Faultbox/objmesh/internal/engine/texture"
	"github.com/Faultbox/objmesh/internal/logger"
)

var (
	//go:embed shaders/mesh.vert
	vertexSource string
	//go:embed shaders/mesh.frag
	fragmentSource string
)

// Sampler uniform names, indexed by texture channel.
var samplerNames = [...]string{
	texture.BaseColor:        "texBaseColor",
	texture.Metallic:         "texMetallic",
	texture.Roughness:        "texRoughness",
	texture.AmbientOcclusion: "texAO",
	texture.Normal:           "texNormal",
}

// ErrNoPixels is returned when a texture has no pixel data to upload.
var ErrNoPixels = errors.New("texture has no pixels")

var _ mesh.Device = (*Device)(nil)

// Device implements mesh.Device on the current OpenGL context.
type Device struct {
	program *shader.Program
	vaos    map[uint32]uint32 // vertex buffer -> vertex array
	log     *zap.Logger
}

// New initializes OpenGL and compiles the mesh program.
// Must be called after the OpenGL context is created.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log := logger.Named("gl")
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	prog, err := shader.Compile(vertexSource, fragmentSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh program: %w", err)
	}

	prog.Use()
	for _, ch := range texture.Channels {
		prog.SetInt(samplerNames[ch], int32(ch))
	}
	prog.SetMat4("uModel", mgl32.Ident4())

	return &Device{program: prog, vaos: make(map[uint32]uint32), log: log}, nil
}

// Close deletes the program and any vertex buffers still alive.
func (d *Device) Close() {
	for vbo := range d.vaos {
		d.DeleteVertexBuffer(vbo)
	}
	d.program.Delete()
}

// BeginFrame sets the viewport and clears the framebuffer.
func (d *Device) BeginFrame(width, height int, clear mgl32.Vec3) {
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(clear[0], clear[1], clear[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	d.program.Use()
}

// SetCamera sets the view and projection matrices and the eye position.
func (d *Device) SetCamera(view, proj mgl32.Mat4, eye mgl32.Vec3) {
	d.program.SetMat4("uView", view)
	d.program.SetMat4("uProj", proj)
	d.program.SetVec3("uCamPos", eye)
}

// SetModel sets the model matrix.
func (d *Device) SetModel(model mgl32.Mat4) {
	d.program.SetMat4("uModel", model)
}

// SetLight sets the directional light.
func (d *Device) SetLight(dir, color mgl32.Vec3) {
	d.program.SetVec3("uLightDir", dir)
	d.program.SetVec3("uLightColor", color)
}

// CreateTexture uploads an RGBA8 image with mipmaps and repeat wrapping.
func (d *Device) CreateTexture(img *texture.Image) (uint32, error) {
	if img == nil || len(img.Pix) < img.Width*img.Height*4 || len(img.Pix) == 0 {
		return 0, ErrNoPixels
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(img.Width), int32(img.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	d.log.Debug("texture created", zap.Uint32("id", id), zap.Int("width", img.Width), zap.Int("height", img.Height))
	return id, nil
}

// DeleteTexture deletes a texture.
func (d *Device) DeleteTexture(id uint32) {
	if id != 0 {
		gl.DeleteTextures(1, &id)
	}
}

// CreateVertexBuffer uploads vertices into a buffer with its own vertex array
// describing the interleaved layout.
func (d *Device) CreateVertexBuffer(vertices []mesh.Vertex) (uint32, error) {
	if len(vertices) == 0 {
		return 0, errors.New("no vertices")
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	stride := int32(unsafe.Sizeof(mesh.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(stride), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position, normal, texcoord, tangent, bitangent
	attribs := []struct {
		size   int32
		offset uintptr
	}{
		{3, unsafe.Offsetof(mesh.Vertex{}.Position)},
		{3, unsafe.Offsetof(mesh.Vertex{}.Normal)},
		{2, unsafe.Offsetof(mesh.Vertex{}.TexCoord)},
		{3, unsafe.Offsetof(mesh.Vertex{}.Tangent)},
		{3, unsafe.Offsetof(mesh.Vertex{}.Bitangent)},
	}
	for i, a := range attribs {
		gl.VertexAttribPointerWithOffset(uint32(i), a.size, gl.FLOAT, false, stride, a.offset)
		gl.EnableVertexAttribArray(uint32(i))
	}

	gl.BindVertexArray(0)
	d.vaos[vbo] = vao

	d.log.Debug("vertex buffer created", zap.Uint32("id", vbo), zap.Int("vertices", len(vertices)))
	return vbo, nil
}

// DeleteVertexBuffer deletes a vertex buffer and its vertex array.
func (d *Device) DeleteVertexBuffer(id uint32) {
	vao, ok := d.vaos[id]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &vao)
	gl.DeleteBuffers(1, &id)
	delete(d.vaos, id)
}

// BindVertexBuffer binds the vertex array of a buffer for drawing.
func (d *Device) BindVertexBuffer(id uint32) {
	gl.BindVertexArray(d.vaos[id])
}

// BindTexture binds a texture to the unit of its channel.
func (d *Device) BindTexture(ch texture.Channel, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(ch))
	gl.BindTexture(gl.TEXTURE_2D, id)
}

// SetMaterial sets the factors the channel textures are multiplied by.
func (d *Device) SetMaterial(baseColor mgl32.Vec3, metallic, roughness, ao float32) {
	d.program.SetVec3("uBaseColorFactor", baseColor)
	d.program.SetFloat("uMetallicFactor", metallic)
	d.program.SetFloat("uRoughnessFactor", roughness)
	d.program.SetFloat("uAOFactor", ao)
}

// DrawArrays draws triangles from the bound vertex buffer.
func (d *Device) DrawArrays(first, count int) {
	gl.DrawArrays(gl.TRIANGLES, int32(first), int32(count))
}

// ReadPixels reads the default framebuffer as bottom-up RGBA rows.
func (d *Device) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels
}
