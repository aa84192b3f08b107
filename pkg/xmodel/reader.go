package xmodel

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// maxPrealloc bounds slice preallocation from wire counts so that a corrupt
// count fails on truncation instead of on allocation.
const maxPrealloc = 1 << 16

// reader decodes little-endian primitives from an io.Reader. The first error
// sticks: later reads return zero values and err reports it.
type reader struct {
	r   io.Reader
	tmp [8]byte
	n   int64
	err error
}

func newReader(r io.Reader) *reader {
	return &reader{r: r}
}

func (r *reader) setError(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) fill(p []byte) bool {
	if r.err != nil {
		return false
	}
	n, err := io.ReadFull(r.r, p)
	r.n += int64(n)
	if err != nil {
		r.err = ioError(err)
		return false
	}
	return true
}

func (r *reader) uint8() uint8 {
	if !r.fill(r.tmp[:1]) {
		return 0
	}
	return r.tmp[0]
}

func (r *reader) uint16() uint16 {
	if !r.fill(r.tmp[:2]) {
		return 0
	}
	return binary.LittleEndian.Uint16(r.tmp[:2])
}

func (r *reader) uint32() uint32 {
	if !r.fill(r.tmp[:4]) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.tmp[:4])
}

func (r *reader) float32() float32 {
	return math.Float32frombits(r.uint32())
}

func (r *reader) float64() float64 {
	if !r.fill(r.tmp[:8]) {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.tmp[:8]))
}

func (r *reader) bool() bool {
	return r.uint8() != 0
}

func (r *reader) float32Array(dst []float32) {
	for i := range dst {
		if r.err != nil {
			return
		}
		dst[i] = r.float32()
	}
}

func (r *reader) boolArray(dst []bool) {
	for i := range dst {
		dst[i] = r.bool()
	}
}

// float32s reads n floats into a new slice.
func (r *reader) float32s(n int) []float32 {
	if n == 0 {
		return nil
	}
	out := make([]float32, 0, min(n, maxPrealloc))
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.float32())
	}
	return out
}

// string reads a u16 length-prefixed UTF-8 string.
func (r *reader) string() string {
	n := r.uint16()
	if n == 0 || r.err != nil {
		return ""
	}
	buf := make([]byte, n)
	if !r.fill(buf) {
		return ""
	}
	if !utf8.Valid(buf) {
		s, _, _ := transform.String(runes.ReplaceIllFormed(), string(buf))
		return s
	}
	return string(buf)
}

// blob reads a u32 length-prefixed byte sequence. Zero length yields nil.
func (r *reader) blob() []byte {
	n := r.uint32()
	if n == 0 || r.err != nil {
		return nil
	}
	var buf bytes.Buffer
	m, err := io.CopyN(&buf, r.r, int64(n))
	r.n += m
	if err != nil {
		r.setError(ioError(err))
		return nil
	}
	return buf.Bytes()
}
