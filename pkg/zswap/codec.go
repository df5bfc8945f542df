package zswap

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/woozymasta/lzo"
)

// Codec compresses and decompresses single pages.
//
// Compress writes the compressed form of src into dst and returns the
// number of bytes written. A return of (0, nil) means the input is
// incompressible and nothing was written. Decompress writes the
// expanded form of src into dst and returns the number of bytes
// written; output larger than dst is an error.
//
// Codec instances are not safe for concurrent use; the cache holds one
// per compression slot.
type Codec interface {
	Compress(src, dst []byte) (int, error)
	Decompress(src, dst []byte) (int, error)
}

// CodecFactory builds one codec instance per compression slot.
type CodecFactory func() (Codec, error)

const (
	defaultCompressor  = "lz4"
	fallbackCompressor = "lzo"
)

var codecs = map[string]CodecFactory{
	"lz4":  newLZ4Codec,
	"lzo":  newLZOCodec,
	"zstd": newZstdCodec,
}

// resolveCompressor picks the codec factory for name, falling back to
// the default (then the fallback) when the requested compressor is not
// available.
func resolveCompressor(name string) (string, CodecFactory, error) {
	if name == "" {
		name = defaultCompressor
	}

	if f, ok := codecs[name]; ok {
		return name, f, nil
	}

	// Fall back to the default compressor.
	if f, ok := codecs[defaultCompressor]; ok {
		return defaultCompressor, f, nil
	}

	if f, ok := codecs[fallbackCompressor]; ok {
		return fallbackCompressor, f, nil
	}

	return "", nil, fmt.Errorf("%w: no compressor available", ErrNoDevice)
}

// lz4Codec wraps a pierrec/lz4 block compressor. The Compressor keeps
// its own hash-table state, which is why instances are per-slot.
type lz4Codec struct {
	z lz4.Compressor
}

func newLZ4Codec() (Codec, error) {
	return &lz4Codec{}, nil
}

func (c *lz4Codec) Compress(src, dst []byte) (int, error) {
	n, err := c.z.CompressBlock(src, dst)
	if err != nil {
		return 0, fmt.Errorf("lz4 compress: %w", err)
	}

	return n, nil
}

func (c *lz4Codec) Decompress(src, dst []byte) (int, error) {
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return 0, fmt.Errorf("lz4 decompress: %w", err)
	}

	return n, nil
}

// lzoCodec uses the LZO1X-1 algorithm, matching the kernel default.
type lzoCodec struct{}

func newLZOCodec() (Codec, error) {
	return lzoCodec{}, nil
}

func (lzoCodec) Compress(src, dst []byte) (int, error) {
	out, err := lzo.Compress1X(src)
	if err != nil {
		return 0, fmt.Errorf("lzo compress: %w", err)
	}

	if len(out) > len(dst) {
		return 0, fmt.Errorf("lzo compress: output %d exceeds buffer %d", len(out), len(dst))
	}

	return copy(dst, out), nil
}

func (lzoCodec) Decompress(src, dst []byte) (int, error) {
	out, err := lzo.Decompress1X(bytes.NewReader(src), len(src), len(dst))
	if err != nil {
		return 0, fmt.Errorf("lzo decompress: %w", err)
	}

	if len(out) > len(dst) {
		return 0, fmt.Errorf("lzo decompress: output %d exceeds buffer %d", len(out), len(dst))
	}

	return copy(dst, out), nil
}

// zstdCodec holds single-goroutine encoder/decoder contexts.
type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec() (Codec, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &zstdCodec{enc: enc, dec: dec}, nil
}

func (c *zstdCodec) Compress(src, dst []byte) (int, error) {
	out := c.enc.EncodeAll(src, dst[:0])
	if len(out) > len(dst) {
		return 0, fmt.Errorf("zstd compress: output %d exceeds buffer %d", len(out), len(dst))
	}

	return copy(dst, out), nil
}

func (c *zstdCodec) Decompress(src, dst []byte) (int, error) {
	out, err := c.dec.DecodeAll(src, dst[:0])
	if err != nil {
		return 0, fmt.Errorf("zstd decompress: %w", err)
	}

	if len(out) > len(dst) {
		return 0, fmt.Errorf("zstd decompress: output %d exceeds buffer %d", len(out), len(dst))
	}

	return copy(dst, out), nil
}
