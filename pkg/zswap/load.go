package zswap

import "fmt"

// Load fills page from the cache.
//
// Returns nil when decompression completed, [ErrNotFound] when the
// offset is not resident (never stored, invalidated, or written back).
func (c *Cache) Load(typ int, offset uint64, page []byte) error {
	a := c.area(typ)
	if a == nil {
		return ErrNotFound
	}

	if len(page) != PageSize {
		return ErrBadInput
	}

	a.mu.Lock()

	e := a.lookup(offset)
	if e == nil {
		// Entry was written back or never stored.
		a.mu.Unlock()

		return ErrNotFound
	}

	e.get()

	// Detach from the LRU so the writeback engine cannot select an
	// entry that is being loaded.
	a.lruRemove(e)
	a.mu.Unlock()

	src := a.pool.Map(e.handle, MapRO)

	n, err := c.decompress(src[:e.length], page)

	a.pool.Unmap(e.handle)

	if err != nil || n != PageSize {
		panic(fmt.Sprintf("zswap: decompress of %d-byte entry yielded %d bytes (err=%v)", e.length, n, err))
	}

	a.mu.Lock()

	if e.put() != 0 {
		// Still resident: back to the MRU end.
		a.lruPushTail(e)
		a.mu.Unlock()

		return nil
	}

	a.mu.Unlock()

	// A concurrent invalidate or writeback erased the entry from the
	// index and dropped the creation reference while we held the pin;
	// the orphan is ours to free.
	c.freeEntry(a, e)

	return nil
}

// decompress runs the codec of an acquired compression slot. The slot's
// scratch buffer is not used; dst is the caller's page.
func (c *Cache) decompress(src, dst []byte) (int, error) {
	slot := c.comp.get()
	defer c.comp.put(slot)

	return slot.codec.Decompress(src, dst)
}
