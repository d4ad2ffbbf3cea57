// Package mesh builds GPU-ready meshes from parsed OBJ data: one interleaved
// vertex buffer partitioned into per-material draw ranges, with every material
// texture channel resolved to a decoded image or a shared fallback.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objmesh/internal/engine/texture"
)

// NoMaterial is the material ID of the submesh holding faces without a material.
const NoMaterial = -1

// Vertex is one interleaved vertex record. Tangent and Bitangent are reserved
// and left zero.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoord  mgl32.Vec2
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// Submesh is the vertex range [First, First+Count) drawn with one material.
type Submesh struct {
	MaterialID int
	First      int
	Count      int
}

// HasMaterial reports whether the range is bound to a material.
func (s Submesh) HasMaterial() bool {
	return s.MaterialID != NoMaterial
}

// Material is a resolved material. Texture fields are never nil: a missing or
// unreadable map is the shared fallback texture of its channel.
type Material struct {
	Name string

	BaseColorTexture *texture.Texture
	MetallicTexture  *texture.Texture
	RoughnessTexture *texture.Texture
	AOTexture        *texture.Texture
	NormalTexture    *texture.Texture

	BaseColorFactor mgl32.Vec3
	MetallicFactor  float32
	RoughnessFactor float32
	AOFactor        float32
}

// plainMaterial is drawn for faces without a material: untextured, matte white.
var plainMaterial = Material{
	BaseColorFactor: mgl32.Vec3{1, 1, 1},
	RoughnessFactor: 1,
	AOFactor:        1,
}

// Texture returns the texture bound to ch.
func (m *Material) Texture(ch texture.Channel) *texture.Texture {
	switch ch {
	case texture.BaseColor:
		return m.BaseColorTexture
	case texture.Metallic:
		return m.MetallicTexture
	case texture.Roughness:
		return m.RoughnessTexture
	case texture.AmbientOcclusion:
		return m.AOTexture
	case texture.Normal:
		return m.NormalTexture
	}
	return nil
}

func (m *Material) setTexture(ch texture.Channel, t *texture.Texture) {
	switch ch {
	case texture.BaseColor:
		m.BaseColorTexture = t
	case texture.Metallic:
		m.MetallicTexture = t
	case texture.Roughness:
		m.RoughnessTexture = t
	case texture.AmbientOcclusion:
		m.AOTexture = t
	case texture.Normal:
		m.NormalTexture = t
	}
}

// IsDiffuseOnly reports whether the material has no metallic, roughness,
// ambient occlusion or normal map of its own.
func (m *Material) IsDiffuseOnly() bool {
	return m.MetallicTexture.IsFallback() &&
		m.RoughnessTexture.IsFallback() &&
		m.AOTexture.IsFallback() &&
		m.NormalTexture.IsFallback()
}

// Bounds is the axis-aligned bounding box of the mesh positions.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Radius returns half the box diagonal.
func (b Bounds) Radius() float32 {
	return b.Size().Len() * 0.5
}

// Diagnostic records a texture that could not be used and was replaced by the
// channel fallback.
type Diagnostic struct {
	Material string
	Channel  texture.Channel
	Path     string
	Err      error
}

func (d Diagnostic) String() string {
	return d.Material + ": " + d.Channel.String() + " texture " + d.Path + ": " + d.Err.Error()
}
