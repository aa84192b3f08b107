package texture

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/xmodel/pkg/xmodel"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{255, 0, 0, 255})
			} else {
				img.Set(x, y, color.NRGBA{0, 0, 255, 255})
			}
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker(w, h)))
	return buf.Bytes()
}

// tgaBytes builds an uncompressed 24-bit TGA.
func tgaBytes(w, h int) []byte {
	header := make([]byte, 18)
	header[2] = 2 // uncompressed true colour
	binary.LittleEndian.PutUint16(header[12:], uint16(w))
	binary.LittleEndian.PutUint16(header[14:], uint16(h))
	header[16] = 24
	return append(header, make([]byte, w*h*3)...)
}

func TestProbe(t *testing.T) {
	var bmpData bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpData, image.NewGray(image.Rect(0, 0, 5, 3))))

	tests := []struct {
		name   string
		tex    *xmodel.Texture
		format string
		w, h   int
	}{
		{"png", &xmodel.Texture{Ref: "wood.png", Data: pngBytes(t, 4, 2)}, "png", 4, 2},
		{"bmp", &xmodel.Texture{Ref: "//maps/wood.BMP", Data: bmpData.Bytes()}, "bmp", 5, 3},
		{"tga", &xmodel.Texture{Ref: "wood.tga", Data: tgaBytes(7, 6)}, "tga", 7, 6},
		{"sniffed", &xmodel.Texture{Ref: "wood", Data: pngBytes(t, 3, 3)}, "png", 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Probe(tt.tex)
			require.NoError(t, err)
			assert.Equal(t, tt.format, info.Format)
			assert.Equal(t, tt.w, info.Width)
			assert.Equal(t, tt.h, info.Height)
			assert.Equal(t, len(tt.tex.Data), info.Bytes)
		})
	}
}

func TestProbeErrors(t *testing.T) {
	_, err := Probe(nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Probe(&xmodel.Texture{Ref: "wood.png"})
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Probe(&xmodel.Texture{Ref: "wood.png", Data: []byte("not an image")})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDecodeAndEncode(t *testing.T) {
	tex := &xmodel.Texture{Ref: "wood.png", Data: pngBytes(t, 8, 4)}
	img, format, err := Decode(tex)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())

	for _, out := range []string{"png", "webp"} {
		t.Run(out, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, img, out))

			info, err := Probe(&xmodel.Texture{Ref: "out." + out, Data: buf.Bytes()})
			require.NoError(t, err)
			assert.Equal(t, out, info.Format)
			assert.Equal(t, 8, info.Width)
			assert.Equal(t, 4, info.Height)
		})
	}

	assert.ErrorIs(t, Encode(&bytes.Buffer{}, img, "gif"), ErrUnknownFormat)
}

func TestFit(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		size int
		want image.Rectangle
	}{
		{"no limit", 64, 32, 0, image.Rect(0, 0, 64, 32)},
		{"already small", 16, 8, 32, image.Rect(0, 0, 16, 8)},
		{"wide", 64, 32, 16, image.Rect(0, 0, 16, 8)},
		{"tall", 10, 40, 20, image.Rect(0, 0, 5, 20)},
		{"thin", 100, 1, 10, image.Rect(0, 0, 10, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fit(checker(tt.w, tt.h), tt.size).Bounds())
		})
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		tex    xmodel.Texture
		format string
		want   string
	}{
		{xmodel.Texture{Ref: "textures/wood.png"}, "", "wood.png"},
		{xmodel.Texture{Ref: "//textures/wood.tga"}, "png", "wood.png"},
		{xmodel.Texture{Name: "wood"}, "", "wood"},
		{xmodel.Texture{Name: "wood"}, "webp", "wood.webp"},
		{xmodel.Texture{}, "", "texture"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(&tt.tex, tt.format))
	}
}

func TestResolve(t *testing.T) {
	dir := filepath.FromSlash("/models")
	assert.Equal(t, filepath.Join(dir, "tex", "a.png"), Resolve(dir, "//tex/a.png"))
	assert.Equal(t, filepath.Join(dir, "tex", "a.png"), Resolve(dir, "tex/a.png"))

	abs, err := filepath.Abs("a.png")
	require.NoError(t, err)
	assert.Equal(t, abs, Resolve(dir, abs))
}

func TestEmbed(t *testing.T) {
	dir := t.TempDir()
	data := pngBytes(t, 2, 2)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tex"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tex", "a.png"), data, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.png"), []byte("text"), 0644))

	tex := &xmodel.Texture{Name: "a", Ref: "//tex/a.png"}
	info, err := Embed(tex, dir)
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, data, tex.Data)

	bad := &xmodel.Texture{Ref: "notes.png"}
	_, err = Embed(bad, dir)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Empty(t, bad.Data)

	_, err = Embed(&xmodel.Texture{Ref: "missing.png"}, dir)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Embed(&xmodel.Texture{Name: "empty"}, dir)
	assert.Error(t, err)
}
