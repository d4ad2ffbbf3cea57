package texture

import "image/color"

// Deleter releases device texture handles.
type Deleter interface {
	DeleteTexture(id uint32)
}

// Default texel colors per channel. The normal fallback encodes the flat
// tangent-space normal (0, 0, 1).
var defaultColors = [numChannels]color.RGBA{
	BaseColor:        {255, 255, 255, 255},
	Metallic:         {255, 255, 255, 255},
	Roughness:        {255, 255, 255, 255},
	AmbientOcclusion: {255, 255, 255, 255},
	Normal:           {128, 128, 255, 255},
}

// Defaults holds one shared 1x1 fallback texture per channel. Every material
// that lacks a map for a channel points at the same *Texture.
type Defaults struct {
	textures [numChannels]*Texture
}

// NewDefaults creates the fallback textures.
func NewDefaults() *Defaults {
	d := &Defaults{}
	for _, ch := range Channels {
		c := defaultColors[ch]
		d.textures[ch] = &Texture{
			Image: &Image{
				Width:    1,
				Height:   1,
				Channels: 4,
				Pix:      []byte{c.R, c.G, c.B, c.A},
			},
			fallback: true,
		}
	}
	return d
}

// For returns the fallback texture for ch.
func (d *Defaults) For(ch Channel) *Texture {
	if ch < 0 || ch >= numChannels {
		return nil
	}
	return d.textures[ch]
}

// All returns the fallback textures in channel order.
func (d *Defaults) All() []*Texture {
	out := make([]*Texture, 0, numChannels)
	return append(out, d.textures[:]...)
}

// Release deletes the device handles of uploaded fallbacks. Their pixels are
// kept so they can be uploaded again.
func (d *Defaults) Release(del Deleter) {
	for _, t := range d.textures {
		if t.ID != 0 {
			del.DeleteTexture(t.ID)
			t.ID = 0
		}
	}
}
