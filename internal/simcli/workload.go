package simcli

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kevintm78/zswap/pkg/swapdev"
	"github.com/kevintm78/zswap/pkg/zswap"
)

type workloadParams struct {
	pages      int
	workers    int
	seed       int64
	duplicates bool
}

// runWorkload drives a store/load/invalidate mix against the cache and
// verifies every successful round-trip.
func runWorkload(out, errOut io.Writer, cache *zswap.Cache, dev *swapdev.Device, p workloadParams) int {
	if p.pages <= 0 {
		p.pages = DefaultConfig().Pages
	}

	if p.workers <= 0 {
		p.workers = DefaultConfig().Workers
	}

	var stored, rejected, loaded, mismatches atomic.Int64

	perWorker := (p.pages + p.workers - 1) / p.workers

	var g errgroup.Group

	for w := range p.workers {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(p.seed + int64(w)))

			lo := w * perWorker
			hi := min(lo+perWorker, p.pages)

			for off := lo; off < hi; off++ {
				page := makePage(rng, uint64(off))

				err := cache.Store(0, uint64(off), page)
				if err != nil {
					rejected.Add(1)

					continue
				}

				stored.Add(1)

				if p.duplicates && off%8 == 0 {
					dup := makePage(rng, uint64(off))
					if cache.Store(0, uint64(off), dup) == nil {
						page = dup
					}
				}

				got := make([]byte, zswap.PageSize)
				if cache.Load(0, uint64(off), got) != nil {
					// Written back under pressure; the device copy must
					// match instead.
					slot, ok := dev.ReadSlot(zswap.SwapEntry{Type: 0, Offset: uint64(off)})
					if !ok || !bytes.Equal(slot, page) {
						mismatches.Add(1)
					}

					continue
				}

				loaded.Add(1)

				if !bytes.Equal(got, page) {
					mismatches.Add(1)
				}
			}

			return nil
		})
	}

	_ = g.Wait()
	dev.Wait()

	fmt.Fprintf(out, "stored %d  rejected %d  loaded %d  mismatches %d\n",
		stored.Load(), rejected.Load(), loaded.Load(), mismatches.Load())
	printStats(out, cache, dev)

	if mismatches.Load() > 0 {
		fmt.Fprintln(errOut, "error: data mismatches detected")

		return 1
	}

	return 0
}

// makePage builds a compressible page whose content is derived from the
// offset so round-trips are checkable: a repeated 20-byte stamp with a
// sprinkle of random bytes to vary the ratio.
func makePage(rng *rand.Rand, offset uint64) []byte {
	page := make([]byte, zswap.PageSize)

	stamp := fmt.Appendf(nil, "pg-%012x-----", offset)
	for i := 0; i < len(page); i += len(stamp) {
		copy(page[i:], stamp)
	}

	noise := rng.Intn(256)
	for range noise {
		page[rng.Intn(len(page))] = byte(rng.Intn(256))
	}

	return page
}
