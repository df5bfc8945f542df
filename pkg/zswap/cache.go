package zswap

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// PageSize is the unit of storage. Every stored page is exactly this
// many bytes.
const PageSize = 4096

// maxSwapAreas bounds the swap-type → area table.
const maxSwapAreas = 32

// Cache is the compressed swap cache.
//
// One Cache owns the process-wide state: the area table, the frame
// pool, the scratch page ring and the per-slot compression contexts.
// All methods are safe for concurrent use. A Cache must be obtained via
// [New]; the zero value is not usable.
type Cache struct {
	_ [0]func() // prevent external construction

	log       *logrus.Logger
	codecName string

	comp     *compPool
	frames   *framePool
	tmppages *tmppageRing

	// areas is sparse: a slot is nil until the VM announces the area
	// via InitArea.
	areas [maxSwapAreas]atomic.Pointer[area]

	swapCache SwapCache
	blockIO   BlockIO
	newPool   PoolFactory

	totalRAM uint64

	// Live tunables.
	maxPoolPercent      atomic.Uint32
	maxCompressionRatio atomic.Uint32

	stats      counters
	entryCache sync.Pool

	silentPurge bool

	// entryAllocFail simulates record-allocation failure in tests.
	entryAllocFail func() bool
}

// New assembles a cache from opts.
func New(opts Options) (*Cache, error) {
	if opts.SwapCache == nil {
		return nil, errNoSwapCache
	}

	if opts.BlockIO == nil {
		return nil, errNoBlockIO
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	name, factory, err := resolveCompressor(opts.Compressor)
	if err != nil {
		return nil, err
	}

	if opts.Compressor != "" && name != opts.Compressor {
		log.Infof("zswap: %s compressor not available", opts.Compressor)
	}

	log.Infof("zswap: using %s compressor", name)

	comp, err := newCompPool(factory)
	if err != nil {
		return nil, fmt.Errorf("compressor initialization failed: %w", err)
	}

	totalRAM := opts.TotalRAMBytes
	if totalRAM == 0 {
		totalRAM, err = totalRAMBytes()
		if err != nil {
			return nil, err
		}
	}

	c := &Cache{
		log:         log,
		codecName:   name,
		comp:        comp,
		tmppages:    newTmppageRing(),
		swapCache:   opts.SwapCache,
		blockIO:     opts.BlockIO,
		newPool:     opts.NewPool,
		totalRAM:    totalRAM,
		silentPurge: opts.SilentPurge,
	}

	if c.newPool == nil {
		c.newPool = defaultPoolFactory
	}

	pct := opts.MaxPoolPercent
	if pct == 0 {
		pct = DefaultMaxPoolPercent
	}

	ratio := opts.MaxCompressionRatio
	if ratio == 0 {
		ratio = DefaultMaxCompressionRatio
	}

	c.maxPoolPercent.Store(uint32(pct))
	c.maxCompressionRatio.Store(uint32(ratio))

	c.frames = newFramePool(&c.stats, c.maxPoolFrames)

	return c, nil
}

// Compressor reports the codec selected at construction.
func (c *Cache) Compressor() string {
	return c.codecName
}

// maxPoolFrames resolves the live frame ceiling.
func (c *Cache) maxPoolFrames() int64 {
	return int64(uint64(c.maxPoolPercent.Load()) * c.totalRAM / 100 / PageSize)
}

// area returns the record for a swap type, or nil when none is
// registered.
func (c *Cache) area(typ int) *area {
	if typ < 0 || typ >= maxSwapAreas {
		return nil
	}

	return c.areas[typ].Load()
}

// InitArea registers a new swap area. It is invoked from atomic context
// in the original design and therefore must not block; pool creation is
// allocation-only.
//
// On failure the area stays unregistered and stores for the type fail
// with [ErrNoDevice].
func (c *Cache) InitArea(typ int) {
	if typ < 0 || typ >= maxSwapAreas {
		c.log.Errorf("zswap: swap type %d out of range", typ)

		return
	}

	pool, err := c.newPool(c.frames)
	if err != nil {
		c.log.Errorf("zswap: alloc failed, zswap disabled for swap type %d", typ)

		return
	}

	c.areas[typ].Store(newArea(typ, pool))
}
