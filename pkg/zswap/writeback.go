package zswap

import "fmt"

// maxOutstandingFlushes caps submitted-but-incomplete writebacks so a
// burst of evictions cannot decompress an unbounded number of pages
// into the swap cache at once.
const maxOutstandingFlushes = 64

// Writeback attempts up to n LRU-ordered evictions from the area for
// typ and returns the number of entries actually freed.
func (c *Cache) Writeback(typ, n int) int {
	a := c.area(typ)
	if a == nil {
		return 0
	}

	return c.writebackEntries(a, n)
}

// writebackEntries drains up to nr entries from the LRU head into the
// swap device.
func (c *Cache) writebackEntries(a *area, nr int) int {
	freed := 0

	for range nr {
		if c.stats.outstandingWritebacks.Load() >= maxOutstandingFlushes {
			break
		}

		a.mu.Lock()

		e := a.lruPopHead()
		if e == nil {
			a.mu.Unlock()

			break
		}

		// Pin so invalidate doesn't free the entry from under us.
		e.get()

		a.mu.Unlock()

		wbErr := c.writebackEntry(a, e)

		a.mu.Lock()

		// Drop the pin from above. What remains is the creation
		// reference (unless an invalidate raced and retired it) plus
		// one reference per concurrent load.
		refcount := e.put()
		inIndex := a.lookup(e.offset) == e

		switch {
		case wbErr == nil:
			// The bytes are durable via the swap cache: retire the
			// index slot and the creation reference. With an
			// invalidate raced in, both are already gone and refcount
			// is the concurrent-load count alone.
			if inIndex {
				a.erase(e)
				refcount = e.put()
			}

			freed++

		case inIndex && refcount == 1:
			// Writeback failed, no load; back to the LRU head, the
			// cheapest retry posture.
			a.lruPushHead(e)

		default:
			// Writeback failed with a load in progress (the load
			// re-adds the entry to the LRU), or an invalidate raced
			// (refcount is the load count; the last holder frees).
		}

		a.mu.Unlock()

		// A positive count means pinned loads (or, after a failed
		// writeback, the index itself) still own the entry; the last
		// holder frees.
		if refcount <= 0 {
			c.freeEntry(a, e)
		}
	}

	return freed
}

// writebackEntry resumes the original write of one entry to the swap
// device: obtain the swap-cache page, decompress into it, and submit
// the block write the store intercepted in the first place.
func (c *Cache) writebackEntry(a *area, e *entry) error {
	se := SwapEntry{Type: a.typ, Offset: e.offset}

	page, status := c.swapCache.GetOrCreatePage(se)

	switch status {
	case SwapCacheNoMem:
		return ErrOutOfMemory

	case SwapCacheExist:
		// Page is already in the swap cache; ignore for now.
		page.Release()

		return errPageExists

	case SwapCacheNew:
		// Page is locked and ours to fill.
		src := a.pool.Map(e.handle, MapRO)

		n, err := c.decompress(src[:e.length], page.Data())

		a.pool.Unmap(e.handle)

		if err != nil || n != PageSize {
			panic(fmt.Sprintf("zswap: writeback decompress of %d-byte entry yielded %d bytes (err=%v)", e.length, n, err))
		}

		page.SetUptodate()

		// Move it to the inactive tail after end_writeback so the VM
		// reclaims it promptly.
		page.SetReclaim()

		if c.blockIO.WritePage(page, c.endSwapWrite) == nil {
			c.stats.outstandingWritebacks.Add(1)
		}

		page.Release()

		return nil
	}

	return fmt.Errorf("zswap: unexpected swap cache status %d", status)
}

// endSwapWrite is the I/O completion hook.
func (c *Cache) endSwapWrite(error) {
	c.stats.outstandingWritebacks.Add(-1)
	c.stats.writtenBackPages.Add(1)
}
