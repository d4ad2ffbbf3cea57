// Package texture decodes material images into RGBA pixel buffers and owns the
// shared 1x1 fallback textures used when a material map is missing.
package texture

// Image is a decoded pixel buffer, tightly packed rows of RGBA8 texels with the
// first row at the bottom when decoded with FlipVertical.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Texture is a texture handle. Path is empty for fallbacks. Image holds the
// decoded pixels until the texture is uploaded; ID is the device handle, 0 while
// not uploaded.
type Texture struct {
	Path  string
	Image *Image
	ID    uint32

	fallback bool
}

// New wraps a decoded image loaded from path.
func New(path string, img *Image) *Texture {
	return &Texture{Path: path, Image: img}
}

// IsFallback reports whether t is one of the shared default textures.
func (t *Texture) IsFallback() bool {
	return t != nil && t.fallback
}

// Uploaded reports whether t has a device handle.
func (t *Texture) Uploaded() bool {
	return t != nil && t.ID != 0
}
