package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Decode errors.
var (
	ErrEmptyData     = errors.New("empty image data")
	ErrEmptyImage    = errors.New("image has no pixels")
	ErrImageTooLarge = errors.New("image dimensions too large")
	ErrTruncated     = errors.New("image data shorter than its header claims")
)

// MaxPixels bounds the pixel count of a decoded image. Headers are checked
// against it before any pixel memory is allocated.
const MaxPixels = 16384 * 16384

const tgaHeaderSize = 18

// Decoder turns encoded image files into RGBA8 pixel buffers.
type Decoder struct {
	// FlipVertical stores rows bottom-up, matching the OpenGL texture origin.
	FlipVertical bool
}

// Decode decodes PNG, JPEG, GIF, BMP, TIFF, WebP or TGA data. TGA has no
// signature, so data that matches none of the others is tried as TGA.
func (d Decoder) Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	f := sniff(data)
	cfg, err := f.config(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s header: %w", f.name, err)
	}
	if err := checkSize(f.name, cfg, data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.name, err)
	}

	src, err := f.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.name, err)
	}

	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptyImage
	}

	var rgba *image.RGBA
	if d.FlipVertical {
		rgba = transform.FlipV(src)
	} else {
		rgba = clone.AsRGBA(src)
	}
	return pack(rgba), nil
}

type format struct {
	name   string
	decode func(io.Reader) (image.Image, error)
	config func(io.Reader) (image.Config, error)
}

var (
	pngFormat  = format{"png", png.Decode, png.DecodeConfig}
	jpegFormat = format{"jpeg", jpeg.Decode, jpeg.DecodeConfig}
	gifFormat  = format{"gif", gif.Decode, gif.DecodeConfig}
	bmpFormat  = format{"bmp", bmp.Decode, bmp.DecodeConfig}
	tiffFormat = format{"tiff", tiff.Decode, tiff.DecodeConfig}
	webpFormat = format{"webp", webp.Decode, webp.DecodeConfig}
	tgaFormat  = format{"tga", tga.Decode, tga.DecodeConfig}
)

func sniff(data []byte) format {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return pngFormat
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return jpegFormat
	case bytes.HasPrefix(data, []byte("GIF8")):
		return gifFormat
	case bytes.HasPrefix(data, []byte("BM")):
		return bmpFormat
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return tiffFormat
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && string(data[8:12]) == "WEBP":
		return webpFormat
	default:
		return tgaFormat
	}
}

// checkSize rejects headers whose dimensions exceed MaxPixels. TGA payloads
// are also checked against the data length, since its decoder allocates the
// full image before reading any pixels.
func checkSize(name string, cfg image.Config, data []byte) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrEmptyImage
	}
	pixels := int64(cfg.Width) * int64(cfg.Height)
	if pixels > MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	if name != "tga" {
		return nil
	}

	imageType, bpp := data[2], int64(data[16])
	pixelSize := (bpp + 7) / 8
	payload := int64(len(data) - tgaHeaderSize)
	if imageType&0x08 == 0 {
		if pixels*pixelSize > payload {
			return fmt.Errorf("%w: %dx%d at %d bpp in %d bytes", ErrTruncated, cfg.Width, cfg.Height, bpp, len(data))
		}
		return nil
	}
	// An RLE packet holds at most 128 pixels in 1+pixelSize bytes.
	if pixels > payload/(1+pixelSize)*128 {
		return fmt.Errorf("%w: %dx%d run-length data in %d bytes", ErrTruncated, cfg.Width, cfg.Height, len(data))
	}
	return nil
}

// pack copies rgba into a tightly packed buffer starting at the image origin.
func pack(rgba *image.RGBA) *Image {
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()
	row := w * 4

	pix := make([]byte, row*h)
	for y := 0; y < h; y++ {
		off := rgba.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*row:(y+1)*row], rgba.Pix[off:off+row])
	}

	return &Image{Width: w, Height: h, Channels: 4, Pix: pix}
}
