package mesh

import (
	"fmt"

	"github.com/Faultbox/objmesh/internal/engine/texture"
)

// Mesh is a built mesh. It owns its vertex buffer and every non-fallback
// texture of its materials; Release frees them all.
type Mesh struct {
	Name        string
	Vertices    []Vertex
	Submeshes   []Submesh
	Materials   []Material
	Bounds      Bounds
	Diagnostics []Diagnostic

	fallbacks *texture.Defaults
	vbo       uint32
	released  bool
}

// Textures returns the distinct textures the mesh draws with, in material
// and channel order. Fallbacks are included, and a mesh with faces outside
// any material also draws with every channel fallback.
func (m *Mesh) Textures() []*texture.Texture {
	seen := make(map[*texture.Texture]bool)
	var out []*texture.Texture
	add := func(t *texture.Texture) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}

	for i := range m.Materials {
		for _, ch := range texture.Channels {
			add(m.Materials[i].Texture(ch))
		}
	}
	if m.fallbacks != nil && m.hasPlainFaces() {
		for _, t := range m.fallbacks.All() {
			add(t)
		}
	}
	return out
}

func (m *Mesh) hasPlainFaces() bool {
	for _, sm := range m.Submeshes {
		if !sm.HasMaterial() && sm.Count > 0 {
			return true
		}
	}
	return false
}

// Uploaded reports whether the vertex buffer has been created.
func (m *Mesh) Uploaded() bool {
	return m.vbo != 0
}

// Upload creates the vertex buffer and every texture that has no handle yet.
// Decoded pixels of owned textures are dropped once uploaded; fallback pixels
// are kept so the fallbacks can be uploaded again after the builder is closed.
func (m *Mesh) Upload(dev Device) error {
	if m.released {
		return ErrReleased
	}

	if m.vbo == 0 && len(m.Vertices) > 0 {
		id, err := dev.CreateVertexBuffer(m.Vertices)
		if err != nil {
			return fmt.Errorf("upload %s vertices: %w", m.Name, err)
		}
		m.vbo = id
	}

	for _, t := range m.Textures() {
		if t.ID != 0 {
			continue
		}
		if t.Image == nil {
			return fmt.Errorf("upload %s texture %s: no pixels", m.Name, t.Path)
		}
		id, err := dev.CreateTexture(t.Image)
		if err != nil {
			return fmt.Errorf("upload %s texture %s: %w", m.Name, t.Path, err)
		}
		t.ID = id
		if !t.IsFallback() {
			t.Image = nil
		}
	}
	return nil
}

// Draw issues one draw per submesh after setting its material factors and
// binding its five channel textures. Submeshes without a material draw matte
// white with the channel fallbacks.
func (m *Mesh) Draw(dev Device) {
	if m.released || m.vbo == 0 {
		return
	}

	dev.BindVertexBuffer(m.vbo)
	for _, sm := range m.Submeshes {
		if sm.Count == 0 {
			continue
		}
		mat := &plainMaterial
		if sm.HasMaterial() {
			mat = &m.Materials[sm.MaterialID]
		}
		dev.SetMaterial(mat.BaseColorFactor, mat.MetallicFactor, mat.RoughnessFactor, mat.AOFactor)
		for _, ch := range texture.Channels {
			dev.BindTexture(ch, m.textureID(mat, ch))
		}
		dev.DrawArrays(sm.First, sm.Count)
	}
}

func (m *Mesh) textureID(mat *Material, ch texture.Channel) uint32 {
	if t := mat.Texture(ch); t != nil {
		return t.ID
	}
	if m.fallbacks != nil {
		return m.fallbacks.For(ch).ID
	}
	return 0
}

// Release deletes the vertex buffer and the owned textures. Fallback textures
// belong to the builder and are left alone. Calling Release again does nothing.
func (m *Mesh) Release(dev Device) {
	if m.released {
		return
	}
	m.released = true

	if m.vbo != 0 {
		dev.DeleteVertexBuffer(m.vbo)
		m.vbo = 0
	}
	for _, t := range m.Textures() {
		if t.IsFallback() {
			continue
		}
		if t.ID != 0 {
			dev.DeleteTexture(t.ID)
			t.ID = 0
		}
		t.Image = nil
	}
}
