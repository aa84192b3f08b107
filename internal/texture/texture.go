// Package texture inspects and converts the image bytes embedded in
// xmodel textures.
//
// Formats are picked from the texture path extension. Data whose extension
// is unknown is sniffed by trying each decoder in turn; TGA has no
// signature, so it is tried last.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/Faultbox/xmodel/pkg/xmodel"
)

var (
	ErrNoData        = errors.New("texture: no embedded data")
	ErrUnknownFormat = errors.New("texture: unknown image format")
)

type codec struct {
	name         string
	exts         []string
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

var codecs = []codec{
	{"png", []string{".png"}, png.Decode, png.DecodeConfig},
	{"jpeg", []string{".jpg", ".jpeg"}, jpeg.Decode, jpeg.DecodeConfig},
	{"bmp", []string{".bmp"}, bmp.Decode, bmp.DecodeConfig},
	{"tiff", []string{".tif", ".tiff"}, tiff.Decode, tiff.DecodeConfig},
	{"webp", []string{".webp"}, webp.Decode, webp.DecodeConfig},
	{"tga", []string{".tga"}, tga.Decode, tga.DecodeConfig},
}

// Info describes an embedded image.
type Info struct {
	Format string
	Width  int
	Height int
	Bytes  int
}

func (i Info) String() string {
	return fmt.Sprintf("%s %dx%d (%d bytes)", i.Format, i.Width, i.Height, i.Bytes)
}

// candidates returns the codecs to try for a texture path: the one matching
// its extension, or all of them.
func candidates(ref string) []codec {
	ext := strings.ToLower(filepath.Ext(ref))
	for _, c := range codecs {
		for _, e := range c.exts {
			if e == ext {
				return []codec{c}
			}
		}
	}
	return codecs
}

// Probe reads the format and dimensions of the embedded image of t without
// decoding its pixels.
func Probe(t *xmodel.Texture) (Info, error) {
	if t == nil || len(t.Data) == 0 {
		return Info{}, ErrNoData
	}
	for _, c := range candidates(t.Ref) {
		cfg, err := c.decodeConfig(bytes.NewReader(t.Data))
		if err == nil {
			return Info{Format: c.name, Width: cfg.Width, Height: cfg.Height, Bytes: len(t.Data)}, nil
		}
	}
	return Info{}, fmt.Errorf("%w: %q", ErrUnknownFormat, t.Ref)
}

// Decode decodes the embedded image of t and returns it with its format name.
func Decode(t *xmodel.Texture) (image.Image, string, error) {
	if t == nil || len(t.Data) == 0 {
		return nil, "", ErrNoData
	}
	var last error
	for _, c := range candidates(t.Ref) {
		img, err := c.decode(bytes.NewReader(t.Data))
		if err == nil {
			return img, c.name, nil
		}
		last = err
	}
	return nil, "", fmt.Errorf("%w: %q: %w", ErrUnknownFormat, t.Ref, last)
}

// Fit scales img down so that neither side exceeds size, keeping its aspect
// ratio. Smaller images and a size of 0 return img unchanged.
func Fit(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if size <= 0 || (w <= size && h <= size) {
		return img
	}
	if w >= h {
		h = max(1, h*size/w)
		w = size
	} else {
		w = max(1, w*size/h)
		h = size
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode writes img as png or webp.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "webp":
		return nativewebp.Encode(w, img, nil)
	}
	return fmt.Errorf("%w: cannot encode %q", ErrUnknownFormat, format)
}

// FileName returns the base name used when t is written to disk. The
// extension is replaced when format is not empty.
func FileName(t *xmodel.Texture, format string) string {
	name := filepath.Base(strings.TrimPrefix(filepath.ToSlash(t.Ref), "//"))
	if name == "." || name == "/" || name == "" {
		name = t.Name
	}
	if name == "" {
		name = "texture"
	}
	if format != "" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + "." + format
	}
	return name
}

// Resolve returns the file a texture path points at. Paths starting with
// "//" and other relative paths are taken relative to dir.
func Resolve(dir, ref string) string {
	if rest, ok := strings.CutPrefix(ref, "//"); ok {
		return filepath.Join(dir, filepath.FromSlash(rest))
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(dir, filepath.FromSlash(ref))
}

// Embed loads the file t refers to, relative to dir, into t.Data. The data
// must be an image one of the decoders understands.
func Embed(t *xmodel.Texture, dir string) (Info, error) {
	if t.Ref == "" {
		return Info{}, fmt.Errorf("texture %q: no path to embed", t.Name)
	}
	data, err := os.ReadFile(Resolve(dir, t.Ref))
	if err != nil {
		return Info{}, err
	}
	probe := &xmodel.Texture{Ref: t.Ref, Data: data}
	info, err := Probe(probe)
	if err != nil {
		return Info{}, err
	}
	t.Data = data
	return info, nil
}
