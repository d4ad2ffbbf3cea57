package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objmesh/internal/engine/texture"
)

// Device creates, binds and draws GPU resources. Calls must come from a single
// goroutine; implementations are not expected to be reentrant.
type Device interface {
	// CreateTexture uploads img and returns a non-zero handle.
	CreateTexture(img *texture.Image) (uint32, error)
	DeleteTexture(id uint32)

	// CreateVertexBuffer uploads vertices and returns a non-zero handle.
	CreateVertexBuffer(vertices []Vertex) (uint32, error)
	DeleteVertexBuffer(id uint32)
	BindVertexBuffer(id uint32)

	// BindTexture binds id to the texture unit of ch.
	BindTexture(ch texture.Channel, id uint32)
	// SetMaterial sets the factors the bound channel textures are scaled by.
	SetMaterial(baseColor mgl32.Vec3, metallic, roughness, ao float32)
	// DrawArrays draws count vertices starting at first from the bound
	// vertex buffer.
	DrawArrays(first, count int)
}
