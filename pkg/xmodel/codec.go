// Package xmodel implements the xModel binary scene format: meshes,
// materials, textures, skeletal nodes, IK constraints and keyframe animation.
//
// A stream is read and written front to back in one pass:
//
//	u32 magic       "xmda"
//	u32 version
//	root Container  identity, tag, payload
//	u32 terminator  "eoxd"
//
// Every structure reference is a u32 identity. The first time an instance is
// written its identity is followed by its tag and payload; later appearances
// of the same instance write the identity alone, and 0 stands for nil. This
// keeps shared textures, bones and animation targets shared after a round
// trip and makes cyclic graphs safe to write.
package xmodel

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
)

// Envelope constants.
const (
	Magic      uint32 = 'x' | 'm'<<8 | 'd'<<16 | 'a'<<24 // "xmda"
	Terminator uint32 = 'e' | 'o'<<8 | 'x'<<16 | 'd'<<24 // "eoxd"

	// Version is the format version the encoder writes.
	Version uint32 = 35
	// CompatibilityVersion is the oldest version the decoder reads by default.
	CompatibilityVersion uint32 = 35

	VersionName              = "0.9.91"
	CompatibilityVersionName = "0.9.91"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the package logger. It is a no-op logger unless SetLogger
// was called.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger replaces the package logger. Passing nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}

// DecodeOptions controls which streams Decode accepts.
type DecodeOptions struct {
	// MinVersion and MaxVersion bound the accepted stream version, inclusive.
	MinVersion uint32
	MaxVersion uint32
	// LenientTerminator accepts a structurally complete stream whose trailing
	// terminator is missing or wrong, logging a warning instead of failing.
	LenientTerminator bool
}

// DefaultDecodeOptions accepts exactly the versions this package can read.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{MinVersion: CompatibilityVersion, MaxVersion: Version}
}

// Encode writes c to w and returns the number of bytes written. w is not
// buffered or flushed by Encode.
func Encode(w io.Writer, c *Container) (int64, error) {
	if c == nil {
		return 0, ErrNilContainer
	}
	e := &encoder{w: newWriter(w), ids: newEncodeTable(), log: Logger()}

	e.w.uint32(Magic)
	e.w.uint32(Version)
	e.putStructure(c)
	e.w.uint32(Terminator)

	if e.w.err != nil {
		return e.w.n, fmt.Errorf("encoding container %q: %w", c.Name, e.w.err)
	}
	e.log.Debug("encoded container",
		zap.String("name", c.Name),
		zap.Uint32("version", Version),
		zap.Int("structures", e.ids.len()),
		zap.Int64("bytes", e.w.n))
	return e.w.n, nil
}

// Decode reads one container from r using DefaultDecodeOptions.
func Decode(r io.Reader) (*Container, error) {
	return DecodeWithOptions(r, DefaultDecodeOptions())
}

// DecodeWithOptions reads one container from r. It consumes exactly the
// bytes of one stream.
func DecodeWithOptions(r io.Reader, opts DecodeOptions) (*Container, error) {
	d := &decoder{r: newReader(r), ids: newDecodeTable(), log: Logger()}

	magic := d.r.uint32()
	if d.r.err != nil {
		return nil, fmt.Errorf("reading magic: %w", d.r.err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: got %#08x", ErrMagicMismatch, magic)
	}

	version := d.r.uint32()
	if d.r.err != nil {
		return nil, fmt.Errorf("reading version: %w", d.r.err)
	}
	if version < opts.MinVersion || version > opts.MaxVersion {
		return nil, fmt.Errorf("%w: %d (accepted %d-%d)", ErrUnsupportedVersion, version, opts.MinVersion, opts.MaxVersion)
	}

	root := d.getStructure()
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("decoding root: %w", err)
	}
	c, ok := root.(*Container)
	if !ok {
		kind := TagNull
		if root != nil {
			kind = root.Tag()
		}
		return nil, fmt.Errorf("%w: root is %s, expected Container", ErrStructureMismatch, kind)
	}

	end := d.r.uint32()
	switch {
	case d.r.err == nil && end == Terminator:
	case opts.LenientTerminator:
		d.log.Warn("stream has no valid terminator",
			zap.String("container", c.Name),
			zap.Uint32("terminator", end),
			zap.Error(d.r.err))
	case d.r.err != nil:
		return nil, fmt.Errorf("reading terminator: %w", d.r.err)
	default:
		return nil, fmt.Errorf("%w: got %#08x", ErrTerminatorMismatch, end)
	}

	d.log.Debug("decoded container",
		zap.String("name", c.Name),
		zap.Uint32("version", version),
		zap.Int("structures", d.ids.len()),
		zap.Int64("bytes", d.r.n))
	return c, nil
}

// Marshal encodes c into a new byte slice.
func Marshal(c *Container) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a container from data with the default options.
func Unmarshal(data []byte) (*Container, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile decodes a container from a file on disk.
func ReadFile(path string, opts DecodeOptions) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening xmodel file: %w", err)
	}
	defer f.Close()
	return DecodeWithOptions(bufio.NewReader(f), opts)
}

// WriteFile encodes c to a file on disk, replacing any existing file.
func WriteFile(path string, c *Container) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating xmodel file: %w", err)
	}
	bw := bufio.NewWriter(f)
	n, err := Encode(bw, c)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}
