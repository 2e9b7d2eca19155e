// Package snappycodec provides a snappy framed-stream compression codec.
package snappycodec

import (
	"io"

	"github.com/golang/snappy"

	"github.com/discochess/extcodec/internal/compression"
)

// Compile-time check that Codec implements compression.Codec.
var _ compression.Codec = (*Codec)(nil)

// Codec implements snappy framed compression.
type Codec struct{}

// New returns a new snappy codec.
func New() *Codec {
	return &Codec{}
}

// Reader wraps r to decompress a snappy stream.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(snappy.NewReader(r)), nil
}

// Writer wraps w to compress data into a snappy stream.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return snappy.NewBufferedWriter(w), nil
}

// Extension returns "sz".
func (c *Codec) Extension() string {
	return "sz"
}
