package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/giwty/title-menu/fileio"
	"golang.org/x/image/draw"
)

const (
	ICON_SIZE = 128
)

var (
	pngMagic = []byte("\x89PNG\r\n\x1a\n")

	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Converts icon assets into textures and re-encodes native icons into the
// icon cache format
type Pipeline struct {
	size  int
	files fileStore
}

type fileStore interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// Create a pipeline scaling every decoded icon to size x size, 0 keeps the
// source size
func NewPipeline(size int) *Pipeline {
	return &Pipeline{size: size, files: fileio.NewOSStorage()}
}

func (p *Pipeline) Decode(data []byte) (*Texture, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	return NewTexture(p.scale(img)), nil
}

// Convert the image at src into the format implied by the dst extension.
// dst is replaced atomically, an interrupted write never leaves a partial
// file behind.
func (p *Pipeline) Reencode(src, dst string) error {
	data, err := p.files.ReadFile(src)
	if err != nil {
		return err
	}
	img, err := decode(data)
	if err != nil {
		return fmt.Errorf("decode %v: %w", src, err)
	}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(dst)) {
	case ".png":
		err = png.Encode(&buf, img)
	default:
		return fmt.Errorf("%w: extension of %v", ErrUnsupportedFormat, dst)
	}
	if err != nil {
		return fmt.Errorf("encode %v: %w", dst, err)
	}

	return p.files.WriteFile(dst, buf.Bytes())
}

func (p *Pipeline) scale(img image.Image) image.Image {
	if p.size <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() == p.size && b.Dy() == p.size {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, p.size, p.size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// PNG is detected by its magic, anything else is tried as TGA (native icons
// have no signature)
func decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrUnsupportedFormat)
	}
	if bytes.HasPrefix(data, pngMagic) {
		return png.Decode(bytes.NewReader(data))
	}
	img, err := tga.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return img, nil
}
