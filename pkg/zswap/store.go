package zswap

// writebackBatch is how many LRU entries one pressured store tries to
// evict before retrying its allocation.
const writebackBatch = 16

// Store attempts to compress and admit a single page.
//
// On success the page is retained in the compressed pool and nil is
// returned. On rejection one of the sentinel errors is returned and the
// page is not admitted; the caller falls back to the direct swap path.
func (c *Cache) Store(typ int, offset uint64, page []byte) error {
	a := c.area(typ)
	if a == nil {
		return ErrNoDevice
	}

	if len(page) != PageSize {
		return ErrBadInput
	}

	// Reserve the entry record first so a full record cache rejects
	// before any compression work.
	e := c.entryAlloc()
	if e == nil {
		c.stats.rejectKmemcacheFail.Add(1)

		return ErrOutOfMemory
	}

	// Compress into the slot's scratch buffer. Holding the slot keeps
	// the buffer ours, the way the per-CPU buffer belongs to a CPU with
	// preemption off.
	slot := c.comp.get()

	dlen, err := slot.codec.Compress(page, slot.buf)
	if err != nil {
		c.comp.put(slot)
		c.entryFree(e)

		return ErrBadInput
	}

	// dlen == 0 is the codec's incompressible signal; it shares the
	// ratio reject rather than the codec-error reject.
	if dlen == 0 || dlen*100/PageSize > int(c.maxCompressionRatio.Load()) {
		c.stats.rejectCompressPoor.Add(1)
		c.comp.put(slot)
		c.entryFree(e)

		return ErrCompressionTooPoor
	}

	src := slot.buf[:dlen]

	var tmppage []byte

	handle, allocErr := a.pool.Alloc(dlen, false)
	if allocErr != nil {
		c.stats.writebackAttempted.Add(1)

		// Copy the compressed payload out of the slot buffer so the
		// slot can be released before we block on writeback.
		tmppage = c.tmppages.take()
		if tmppage == nil {
			c.stats.rejectTmppageFail.Add(1)
			c.comp.put(slot)
			c.entryFree(e)

			return ErrTempPageFail
		}

		copy(tmppage, src)
		src = tmppage[:dlen]

		c.comp.put(slot)
		slot = nil

		// Try to free up some space, then retry once allowing wait.
		c.writebackEntries(a, writebackBatch)

		handle, allocErr = a.pool.Alloc(dlen, true)
		if allocErr != nil {
			c.stats.rejectAllocFail.Add(1)
			c.tmppages.give(tmppage)
			c.entryFree(e)

			return ErrAllocFail
		}

		c.stats.savedByWriteback.Add(1)
	}

	buf := a.pool.Map(handle, MapWO)
	copy(buf, src)
	a.pool.Unmap(handle)

	if tmppage != nil {
		c.tmppages.give(tmppage)
	} else {
		c.comp.put(slot)
	}

	e.offset = offset
	e.handle = handle
	e.length = dlen

	a.mu.Lock()

	for {
		dup := a.insert(e)
		if dup == nil {
			break
		}

		// A store for this offset already landed: retire it. The loop
		// re-runs the insert, which now succeeds because we never drop
		// the lock in between.
		c.stats.duplicateEntry.Add(1)
		a.erase(dup)
		a.lruRemove(dup)

		if dup.put() == 0 {
			c.freeEntry(a, dup)
		}
	}

	a.lruPushTail(e)
	a.mu.Unlock()

	c.stats.storedPages.Add(1)

	return nil
}
