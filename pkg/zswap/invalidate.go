package zswap

// InvalidatePage drops a single slot. No-op when the offset is not
// resident.
func (c *Cache) InvalidatePage(typ int, offset uint64) {
	a := c.area(typ)
	if a == nil {
		return
	}

	a.mu.Lock()

	e := a.lookup(offset)
	if e == nil {
		// Entry was written back.
		a.mu.Unlock()

		return
	}

	a.erase(e)
	a.lruRemove(e)

	// Drop the initial reference from entry creation.
	refcount := e.put()

	a.mu.Unlock()

	if refcount != 0 {
		// A load or writeback holds a pin and will free the orphan
		// when it completes.
		return
	}

	c.freeEntry(a, e)
}

// InvalidateArea drops every slot of a swap area.
//
// The VM is expected to have unused every slot already; this is a
// best-effort backstop, so residual entries are logged (unless
// configured silent) and freed regardless of pins.
func (c *Cache) InvalidateArea(typ int) {
	a := c.area(typ)
	if a == nil {
		return
	}

	a.mu.Lock()

	if n := a.index.Len(); n > 0 && !c.silentPurge {
		c.log.Warnf("zswap: purging %d residual entries for swap type %d", n, typ)
	}

	a.index.Ascend(func(e *entry) bool {
		a.pool.Free(e.handle)
		c.entryFree(e)
		c.stats.storedPages.Add(-1)

		return true
	})

	a.index.Clear(false)
	a.lru.Init()

	a.mu.Unlock()
}
