// Package compression provides the optional compression wrapping for
// table snapshots. It supports zstd, lz4, s2, and snappy with in-memory
// compress/decompress, reusing encoder state and scratch buffers.
package compression

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/pool"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None disables compression
	None Algorithm = "none"
	// Zstd gives the best ratio at good speed
	Zstd Algorithm = "zstd"
	// LZ4 is extremely fast with decent compression
	LZ4 Algorithm = "lz4"
	// S2 is a faster snappy-compatible variant
	S2 Algorithm = "s2"
	// Snappy is fast with moderate compression
	Snappy Algorithm = "snappy"
)

var bufPool = pool.New(
	func() *bytes.Buffer { return &bytes.Buffer{} },
	func(b *bytes.Buffer) { b.Reset() },
)

// Compressor compresses and decompresses byte blocks with one algorithm.
// It is safe for concurrent use.
type Compressor struct {
	algo Algorithm
	zenc *zstd.Encoder
	zdec *zstd.Decoder
}

// NewCompressor creates a compressor for the given algorithm.
func NewCompressor(algo Algorithm) (*Compressor, error) {
	c := &Compressor{algo: algo}
	switch algo {
	case None, LZ4, S2, Snappy:
	case Zstd:
		var err error
		c.zenc, err = zstd.NewWriter(nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "zstd encoder")
		}
		c.zdec, err = zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "zstd decoder")
		}
	default:
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown compression algorithm %q", algo)
	}
	return c, nil
}

// Algorithm returns the configured algorithm.
func (c *Compressor) Algorithm() Algorithm {
	return c.algo
}

// Compress returns the compressed form of src.
func (c *Compressor) Compress(src []byte) ([]byte, error) {
	switch c.algo {
	case None:
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	case Zstd:
		return c.zenc.EncodeAll(src, nil), nil
	case S2:
		return s2.Encode(nil, src), nil
	case Snappy:
		return snappy.Encode(nil, src), nil
	case LZ4:
		buf := bufPool.Get()
		defer bufPool.Put(buf)
		w := lz4.NewWriter(buf)
		if _, err := w.Write(src); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "lz4 compress")
		}
		if err := w.Close(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "lz4 close")
		}
		out := make([]byte, buf.Len())
		copy(out, buf.Bytes())
		return out, nil
	}
	return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown compression algorithm %q", c.algo)
}

// Decompress reverses Compress.
func (c *Compressor) Decompress(src []byte) ([]byte, error) {
	switch c.algo {
	case None:
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	case Zstd:
		out, err := c.zdec.DecodeAll(src, nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "zstd decompress")
		}
		return out, nil
	case S2:
		out, err := s2.Decode(nil, src)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "s2 decompress")
		}
		return out, nil
	case Snappy:
		out, err := snappy.Decode(nil, src)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "snappy decompress")
		}
		return out, nil
	case LZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(src)))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "lz4 decompress")
		}
		return out, nil
	}
	return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown compression algorithm %q", c.algo)
}
