package xmodel

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// writer encodes little-endian primitives to an io.Writer. The first error
// sticks: every later write becomes a no-op and err reports it.
type writer struct {
	w   io.Writer
	tmp [8]byte
	n   int64
	err error
}

func newWriter(w io.Writer) *writer {
	return &writer{w: w}
}

func (w *writer) setError(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) data(p []byte) {
	if w.err != nil || len(p) == 0 {
		return
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err != nil {
		w.err = ioError(err)
	} else if n != len(p) {
		w.err = ioError(io.ErrShortWrite)
	}
}

func (w *writer) uint8(v uint8) {
	w.tmp[0] = v
	w.data(w.tmp[:1])
}

func (w *writer) uint16(v uint16) {
	binary.LittleEndian.PutUint16(w.tmp[:2], v)
	w.data(w.tmp[:2])
}

func (w *writer) uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.tmp[:4], v)
	w.data(w.tmp[:4])
}

func (w *writer) float32(v float32) {
	w.uint32(math.Float32bits(v))
}

func (w *writer) float64(v float64) {
	binary.LittleEndian.PutUint64(w.tmp[:8], math.Float64bits(v))
	w.data(w.tmp[:8])
}

func (w *writer) bool(v bool) {
	if v {
		w.uint8(1)
	} else {
		w.uint8(0)
	}
}

func (w *writer) float32s(v []float32) {
	for _, f := range v {
		if w.err != nil {
			return
		}
		w.float32(f)
	}
}

func (w *writer) bools(v []bool) {
	for _, b := range v {
		w.bool(b)
	}
}

// string writes a u16 byte length followed by UTF-8 bytes. An empty string
// is written as length 0, the same as an absent one.
func (w *writer) string(s string) {
	if !utf8.ValidString(s) {
		s, _, _ = transform.String(runes.ReplaceIllFormed(), s)
	}
	if len(s) > math.MaxUint16 {
		w.setError(fmt.Errorf("%w: string of %d bytes", ErrOverflow, len(s)))
		return
	}
	w.uint16(uint16(len(s)))
	if w.err == nil {
		_, err := io.WriteString(w.w, s)
		w.n += int64(len(s))
		if err != nil {
			w.err = ioError(err)
		}
	}
}

// count8, count16 and count32 write a collection length, failing when it does
// not fit the wire width.
func (w *writer) count8(n int, what string) {
	if n > math.MaxUint8 {
		w.setError(fmt.Errorf("%w: %d %s (max %d)", ErrOverflow, n, what, math.MaxUint8))
		return
	}
	w.uint8(uint8(n))
}

func (w *writer) count16(n int, what string) {
	if n > math.MaxUint16 {
		w.setError(fmt.Errorf("%w: %d %s (max %d)", ErrOverflow, n, what, math.MaxUint16))
		return
	}
	w.uint16(uint16(n))
}

func (w *writer) count32(n int, what string) {
	if int64(n) > math.MaxUint32 {
		w.setError(fmt.Errorf("%w: %d %s (max %d)", ErrOverflow, n, what, uint32(math.MaxUint32)))
		return
	}
	w.uint32(uint32(n))
}

// blob writes a u32 length followed by raw bytes.
func (w *writer) blob(p []byte, what string) {
	w.count32(len(p), what)
	w.data(p)
}
