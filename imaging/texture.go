package imaging

import (
	"image"
	"sync/atomic"
)

var textureIds atomic.Uint64

// Renderable image data attached to a title. The renderer binds Image to a
// GPU texture; a Texture is owned by exactly one holder at a time (a title
// record, the release queue or the renderer).
type Texture struct {
	Id    uint64
	Image image.Image
}

func NewTexture(img image.Image) *Texture {
	return &Texture{Id: textureIds.Add(1), Image: img}
}

func (t *Texture) Bounds() image.Rectangle {
	if t == nil || t.Image == nil {
		return image.Rectangle{}
	}
	return t.Image.Bounds()
}
