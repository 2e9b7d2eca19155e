// Package brotlicodec provides a brotli compression codec.
package brotlicodec

import (
	"io"

	"github.com/andybalholm/brotli"

	"github.com/discochess/extcodec/internal/compression"
)

// Compile-time check that Codec implements compression.Codec.
var _ compression.Codec = (*Codec)(nil)

// Codec implements brotli compression.
type Codec struct {
	quality int
}

// New returns a brotli codec at the default quality.
func New() *Codec {
	return &Codec{quality: brotli.DefaultCompression}
}

// Reader wraps r to decompress brotli data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}

// Writer wraps w to compress data with brotli.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return brotli.NewWriterLevel(w, c.quality), nil
}

// Extension returns "br".
func (c *Codec) Extension() string {
	return "br"
}
