package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// uncompressed 24 bit true color, top-left origin
func tgaBytes(w, h int) []byte {
	var buf bytes.Buffer
	header := make([]byte, 18)
	header[2] = 2
	binary.LittleEndian.PutUint16(header[12:], uint16(w))
	binary.LittleEndian.PutUint16(header[14:], uint16(h))
	header[16] = 24
	header[17] = 0x20
	buf.Write(header)
	for i := 0; i < w*h; i++ {
		buf.Write([]byte{10, 20, 30})
	}
	return buf.Bytes()
}

func TestDecodePNGScales(t *testing.T) {
	p := NewPipeline(ICON_SIZE)

	tex, err := p.Decode(pngBytes(t, 32, 32))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, ICON_SIZE, ICON_SIZE), tex.Bounds())
	assert.NotZero(t, tex.Id)
}

func TestDecodeKeepsSizeWhenUnscaled(t *testing.T) {
	p := NewPipeline(0)

	tex, err := p.Decode(pngBytes(t, 20, 10))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 20, 10), tex.Bounds())
}

func TestDecodeTGA(t *testing.T) {
	p := NewPipeline(0)

	tex, err := p.Decode(tgaBytes(4, 2))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 4, 2), tex.Bounds())
}

func TestDecodeGarbage(t *testing.T) {
	p := NewPipeline(0)

	_, err := p.Decode([]byte{1, 2, 3})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = p.Decode(nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestTexturesGetDistinctIds(t *testing.T) {
	a := NewTexture(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	b := NewTexture(image.NewNRGBA(image.Rect(0, 0, 1, 1)))

	assert.NotEqual(t, a.Id, b.Id)
}

func TestReencodeTGAToPNG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "iconTex.tga")
	dst := filepath.Join(dir, "0005000010101c00.png")
	require.NoError(t, os.WriteFile(src, tgaBytes(8, 8), 0o644))

	require.NoError(t, NewPipeline(ICON_SIZE).Reencode(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
}

func TestReencodeUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "icon.png")
	require.NoError(t, os.WriteFile(src, pngBytes(t, 2, 2), 0o644))

	err := NewPipeline(0).Reencode(src, filepath.Join(dir, "icon.webp"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestReencodeMissingSource(t *testing.T) {
	dir := t.TempDir()

	err := NewPipeline(0).Reencode(filepath.Join(dir, "missing.tga"), filepath.Join(dir, "out.png"))
	assert.Error(t, err)
}

type stubStore struct {
	src     []byte
	written map[string][]byte
	err     error
}

func (f *stubStore) ReadFile(path string) ([]byte, error) {
	return f.src, nil
}

func (f *stubStore) WriteFile(path string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.written[path] = data
	return nil
}

func TestReencodeWritesThroughStorage(t *testing.T) {
	store := &stubStore{src: tgaBytes(4, 4), written: map[string][]byte{}}
	p := NewPipeline(0)
	p.files = store

	require.NoError(t, p.Reencode("iconTex.tga", "icon/0000000000000001.png"))
	require.Contains(t, store.written, "icon/0000000000000001.png")
	img, err := png.Decode(bytes.NewReader(store.written["icon/0000000000000001.png"]))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())

	store.err = errors.New("sd card removed")
	assert.Error(t, p.Reencode("iconTex.tga", "icon/0000000000000002.png"))
}

func TestReencodeLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "iconTex.tga")
	dst := filepath.Join(dir, "icon", "0005000010101c00.png")
	require.NoError(t, os.WriteFile(src, tgaBytes(8, 8), 0o644))

	require.NoError(t, NewPipeline(0).Reencode(src, dst))

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.NotContains(t, names, "0005000010101c00.png.tmp")
	assert.Contains(t, names, "0005000010101c00.png")
}
