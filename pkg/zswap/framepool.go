package zswap

import (
	"errors"
	"sync"
)

// framePoolReserve caps how many freed frames the pool keeps around for
// reuse instead of returning them to the runtime.
const framePoolReserve = 256

// errPoolLimit reports the global frame ceiling.
var errPoolLimit = errors.New("zswap: pool page limit reached")

// framePool is the bounded source of raw PageSize frames consumed by
// the packed allocator. It enforces the global pool ceiling and
// maintains the pool_pages gauge and pool_limit_hit counter.
type framePool struct {
	mu    sync.Mutex
	free  [][]byte
	stats *counters

	// maxFrames resolves the live ceiling at each allocation.
	maxFrames func() int64
}

func newFramePool(stats *counters, maxFrames func() int64) *framePool {
	return &framePool{stats: stats, maxFrames: maxFrames}
}

func (p *framePool) AllocFrame() ([]byte, error) {
	// Claim the frame in the gauge with a compare-and-swap so concurrent
	// allocations from different areas cannot both pass the ceiling.
	for {
		n := p.stats.poolPages.Load()
		if n >= p.maxFrames() {
			p.stats.poolLimitHit.Add(1)

			return nil, errPoolLimit
		}

		if p.stats.poolPages.CompareAndSwap(n, n+1) {
			break
		}
	}

	p.mu.Lock()

	var f []byte
	if n := len(p.free); n > 0 {
		f = p.free[n-1]
		p.free = p.free[:n-1]
	}

	p.mu.Unlock()

	if f == nil {
		f = make([]byte, PageSize)
	}

	return f, nil
}

func (p *framePool) FreeFrame(f []byte) {
	if f == nil {
		return
	}

	p.stats.poolPages.Add(-1)

	p.mu.Lock()
	if len(p.free) < framePoolReserve {
		p.free = append(p.free, f)
	}
	p.mu.Unlock()
}
