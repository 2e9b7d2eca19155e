// Package resultlog persists benchmark results as JSON lines, compressed
// according to the file extension.
package resultlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/discochess/extcodec/internal/compression"
	"github.com/discochess/extcodec/internal/compression/brotlicodec"
	"github.com/discochess/extcodec/internal/compression/gzipcodec"
	"github.com/discochess/extcodec/internal/compression/lz4codec"
	"github.com/discochess/extcodec/internal/compression/noopcodec"
	"github.com/discochess/extcodec/internal/compression/snappycodec"
	"github.com/discochess/extcodec/internal/compression/zstdcodec"
)

// ErrUnknownExtension is returned for paths that are neither .jsonl nor a
// compressed .jsonl.
var ErrUnknownExtension = errors.New("resultlog: unknown extension")

// Record is the outcome of one image round trip through one codec.
type Record struct {
	Time              time.Time `json:"time"`
	Codec             string    `json:"codec"`
	Image             string    `json:"image"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	CompressedBytes   int       `json:"compressed_bytes"`
	BitsPerPixel      float64   `json:"bpp"`
	CompressSeconds   []float64 `json:"compress_seconds,omitempty"`
	DecompressSeconds []float64 `json:"decompress_seconds,omitempty"`
	MaxAbsDiff        float64   `json:"max_abs_diff"`
	// PSNR in dB. Zero when the round trip was lossless.
	PSNR  float64 `json:"psnr,omitempty"`
	Error string  `json:"error,omitempty"`
}

// Lossless reports whether the decoded image matched the source exactly.
func (r Record) Lossless() bool {
	return r.Error == "" && r.MaxAbsDiff == 0
}

// CodecFor returns the compression codec selected by path's extension:
// .jsonl is stored plain, .jsonl.{zst,gz,lz4,br,sz} compressed.
func CodecFor(path string) (compression.Codec, error) {
	ext := filepath.Ext(path)
	if ext == ".jsonl" {
		return noopcodec.New(), nil
	}
	if filepath.Ext(path[:len(path)-len(ext)]) != ".jsonl" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, path)
	}
	switch ext {
	case ".zst":
		return zstdcodec.New(), nil
	case ".gz":
		return gzipcodec.New(), nil
	case ".lz4":
		return lz4codec.New(), nil
	case ".br":
		return brotlicodec.New(), nil
	case ".sz":
		return snappycodec.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, path)
	}
}

// Writer appends records to a result log.
type Writer struct {
	file *os.File
	buf  *bufio.Writer
	zw   io.WriteCloser
	enc  *json.Encoder
	n    int
}

// Create truncates or creates the log at path.
func Create(path string) (*Writer, error) {
	c, err := CodecFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating result log: %w", err)
	}
	buf := bufio.NewWriter(f)
	zw, err := c.Writer(buf)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating %s writer: %w", c.Extension(), err)
	}
	return &Writer{file: f, buf: buf, zw: zw, enc: json.NewEncoder(zw)}, nil
}

// Write appends one record.
func (w *Writer) Write(r Record) error {
	if math.IsInf(r.PSNR, 0) || math.IsNaN(r.PSNR) {
		r.PSNR = 0
	}
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("writing record %d: %w", w.n, err)
	}
	w.n++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.n
}

// Close flushes the compressed stream and closes the file.
func (w *Writer) Close() error {
	err := w.zw.Close()
	if ferr := w.buf.Flush(); err == nil {
		err = ferr
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("closing result log: %w", err)
	}
	return nil
}

// ReadFile reads every record in the log at path.
func ReadFile(path string) ([]Record, error) {
	c, err := CodecFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening result log: %w", err)
	}
	defer f.Close()

	zr, err := c.Reader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("creating %s reader: %w", c.Extension(), err)
	}
	defer zr.Close()

	var records []Record
	dec := json.NewDecoder(zr)
	for {
		var r Record
		err := dec.Decode(&r)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", len(records), err)
		}
		records = append(records, r)
	}
}
