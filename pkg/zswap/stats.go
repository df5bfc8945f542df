package zswap

import "sync/atomic"

// counters mirror the original driver's statistics block. The gauges
// (poolPages, storedPages, outstandingWritebacks) steer policy; the
// rest are event counters exposed to operators.
type counters struct {
	poolPages             atomic.Int64
	storedPages           atomic.Int64
	outstandingWritebacks atomic.Int64

	poolLimitHit        atomic.Uint64
	writtenBackPages    atomic.Uint64
	rejectCompressPoor  atomic.Uint64
	writebackAttempted  atomic.Uint64
	rejectTmppageFail   atomic.Uint64
	rejectAllocFail     atomic.Uint64
	rejectKmemcacheFail atomic.Uint64
	savedByWriteback    atomic.Uint64
	duplicateEntry      atomic.Uint64
}

// Stats is a point-in-time snapshot of the cache counters.
type Stats struct {
	PoolPages             int64  `json:"pool_pages"`
	StoredPages           int64  `json:"stored_pages"`
	OutstandingWritebacks int64  `json:"outstanding_writebacks"`
	PoolLimitHit          uint64 `json:"pool_limit_hit"`
	WrittenBackPages      uint64 `json:"written_back_pages"`
	RejectCompressPoor    uint64 `json:"reject_compress_poor"`
	WritebackAttempted    uint64 `json:"writeback_attempted"`
	RejectTmppageFail     uint64 `json:"reject_tmppage_fail"`
	RejectAllocFail       uint64 `json:"reject_alloc_fail"`
	RejectKmemcacheFail   uint64 `json:"reject_kmemcache_fail"`
	SavedByWriteback      uint64 `json:"saved_by_writeback"`
	DuplicateEntry        uint64 `json:"duplicate_entry"`
}

// Stats returns a snapshot of the operator-visible counters.
func (c *Cache) Stats() Stats {
	return Stats{
		PoolPages:             c.stats.poolPages.Load(),
		StoredPages:           c.stats.storedPages.Load(),
		OutstandingWritebacks: c.stats.outstandingWritebacks.Load(),
		PoolLimitHit:          c.stats.poolLimitHit.Load(),
		WrittenBackPages:      c.stats.writtenBackPages.Load(),
		RejectCompressPoor:    c.stats.rejectCompressPoor.Load(),
		WritebackAttempted:    c.stats.writebackAttempted.Load(),
		RejectTmppageFail:     c.stats.rejectTmppageFail.Load(),
		RejectAllocFail:       c.stats.rejectAllocFail.Load(),
		RejectKmemcacheFail:   c.stats.rejectKmemcacheFail.Load(),
		SavedByWriteback:      c.stats.savedByWriteback.Load(),
		DuplicateEntry:        c.stats.duplicateEntry.Load(),
	}
}
