package zswap

import "container/list"

// entry tracks a single compressed page.
//
// offset is the swap offset within the owning area and the index key.
// handle and length locate the compressed payload in the area's packed
// pool. refcount guards against premature freeing by concurrent load,
// invalidate and writeback; it is only ever read or written under the
// area lock, so it is a plain int. elem is the LRU linkage: nil while
// the entry is detached.
type entry struct {
	offset   uint64
	handle   Handle
	length   int
	refcount int
	elem     *list.Element
}

// get pins the entry. Caller holds the area lock.
func (e *entry) get() {
	e.refcount++
}

// put unpins the entry and returns the post-decrement refcount. It
// never frees. Caller holds the area lock.
func (e *entry) put() int {
	e.refcount--

	return e.refcount
}

// entryAlloc reserves a fresh detached entry record with the creation
// reference.
func (c *Cache) entryAlloc() *entry {
	if c.entryAllocFail != nil && c.entryAllocFail() {
		return nil
	}

	e, ok := c.entryCache.Get().(*entry)
	if !ok {
		e = &entry{}
	}

	*e = entry{refcount: 1}

	return e
}

// entryFree releases an entry record. The handle, if any, must already
// be freed.
func (c *Cache) entryFree(e *entry) {
	c.entryCache.Put(e)
}

// freeEntry releases an entry's packed allocation and record and drops
// the stored-page count. Call once the entry is out of the index with
// refcount zero.
func (c *Cache) freeEntry(a *area, e *entry) {
	a.pool.Free(e.handle)
	c.entryFree(e)
	c.stats.storedPages.Add(-1)
}
