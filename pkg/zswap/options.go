package zswap

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Default tunable values.
const (
	// DefaultMaxPoolPercent is the default upper bound on the fraction
	// of total RAM the compressed pool may occupy.
	DefaultMaxPoolPercent = 50

	// DefaultMaxCompressionRatio rejects pages whose compressed size
	// exceeds this percentage of PageSize, so every retained entry
	// saves at least the remainder.
	DefaultMaxCompressionRatio = 80
)

// Options configure a [Cache].
//
// SwapCache and BlockIO are required; they are the outbound
// collaborators the writeback engine drains into. Everything else has a
// usable default.
type Options struct {
	// Compressor names the codec: "lz4" (default), "lzo" or "zstd".
	// Unknown names fall back to the default with a log line.
	Compressor string

	// MaxPoolPercent bounds the compressed pool as a percentage of
	// total RAM. 0 means DefaultMaxPoolPercent. Live-tunable via
	// [Cache.SetMaxPoolPercent].
	MaxPoolPercent uint

	// MaxCompressionRatio is the admission threshold: a page is
	// rejected when compressed_len*100/PageSize exceeds it. 0 means
	// DefaultMaxCompressionRatio. Live-tunable via
	// [Cache.SetMaxCompressionRatio].
	MaxCompressionRatio uint

	// TotalRAMBytes overrides system RAM detection. 0 detects via the
	// OS.
	TotalRAMBytes uint64

	// SwapCache locates or creates swap-cache pages for writeback.
	SwapCache SwapCache

	// BlockIO submits writeback I/O.
	BlockIO BlockIO

	// NewPool builds the packed allocator for each area. Nil uses
	// pkg/zpool.
	NewPool PoolFactory

	// Logger receives operational log lines. Nil uses the logrus
	// standard logger.
	Logger *logrus.Logger

	// SilentPurge suppresses the warning InvalidateArea logs when it
	// finds residual entries. The VM is expected to unuse all slots
	// first, so a nonempty purge is worth a line by default.
	SilentPurge bool
}

var (
	errNoSwapCache = errors.New("zswap: options: SwapCache is required")
	errNoBlockIO   = errors.New("zswap: options: BlockIO is required")
	errNoTotalRAM  = errors.New("zswap: options: total RAM unknown; set TotalRAMBytes")
)

// SetMaxPoolPercent updates the live pool ceiling.
func (c *Cache) SetMaxPoolPercent(pct uint) {
	c.maxPoolPercent.Store(uint32(pct))
}

// MaxPoolPercent returns the live pool ceiling.
func (c *Cache) MaxPoolPercent() uint {
	return uint(c.maxPoolPercent.Load())
}

// SetMaxCompressionRatio updates the live admission threshold.
func (c *Cache) SetMaxCompressionRatio(pct uint) {
	c.maxCompressionRatio.Store(uint32(pct))
}

// MaxCompressionRatio returns the live admission threshold.
func (c *Cache) MaxCompressionRatio() uint {
	return uint(c.maxCompressionRatio.Load())
}
