package zswap

import "github.com/prometheus/client_golang/prometheus"

// collector exports the cache counters as prometheus metrics.
type collector struct {
	cache *Cache

	poolPages             *prometheus.Desc
	storedPages           *prometheus.Desc
	outstandingWritebacks *prometheus.Desc
	poolLimitHit          *prometheus.Desc
	writtenBackPages      *prometheus.Desc
	rejectCompressPoor    *prometheus.Desc
	writebackAttempted    *prometheus.Desc
	rejectTmppageFail     *prometheus.Desc
	rejectAllocFail       *prometheus.Desc
	rejectKmemcacheFail   *prometheus.Desc
	savedByWriteback      *prometheus.Desc
	duplicateEntry        *prometheus.Desc
}

// Collector returns a prometheus collector over the cache counters.
// Register it with any registry; it holds no state of its own.
func (c *Cache) Collector() prometheus.Collector {
	return &collector{
		cache: c,

		poolPages:             prometheus.NewDesc("zswap_pool_pages", "Memory pages used by the compressed pool.", nil, nil),
		storedPages:           prometheus.NewDesc("zswap_stored_pages", "Compressed pages currently stored.", nil, nil),
		outstandingWritebacks: prometheus.NewDesc("zswap_outstanding_writebacks", "Submitted but incomplete writebacks.", nil, nil),
		poolLimitHit:          prometheus.NewDesc("zswap_pool_limit_hit_total", "Frame allocations refused by the pool ceiling.", nil, nil),
		writtenBackPages:      prometheus.NewDesc("zswap_written_back_pages_total", "Pages written back to the swap device.", nil, nil),
		rejectCompressPoor:    prometheus.NewDesc("zswap_reject_compress_poor_total", "Pages rejected by the admission ratio.", nil, nil),
		writebackAttempted:    prometheus.NewDesc("zswap_writeback_attempted_total", "Stores that entered the writeback fallback.", nil, nil),
		rejectTmppageFail:     prometheus.NewDesc("zswap_reject_tmppage_fail_total", "Stores rejected for want of a scratch frame.", nil, nil),
		rejectAllocFail:       prometheus.NewDesc("zswap_reject_alloc_fail_total", "Stores rejected by the packed allocator after writeback.", nil, nil),
		rejectKmemcacheFail:   prometheus.NewDesc("zswap_reject_kmemcache_fail_total", "Stores rejected at entry-record allocation.", nil, nil),
		savedByWriteback:      prometheus.NewDesc("zswap_saved_by_writeback_total", "Stores that succeeded on the post-writeback retry.", nil, nil),
		duplicateEntry:        prometheus.NewDesc("zswap_duplicate_entry_total", "Stores that replaced a resident entry.", nil, nil),
	}
}

func (m *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.poolPages
	ch <- m.storedPages
	ch <- m.outstandingWritebacks
	ch <- m.poolLimitHit
	ch <- m.writtenBackPages
	ch <- m.rejectCompressPoor
	ch <- m.writebackAttempted
	ch <- m.rejectTmppageFail
	ch <- m.rejectAllocFail
	ch <- m.rejectKmemcacheFail
	ch <- m.savedByWriteback
	ch <- m.duplicateEntry
}

func (m *collector) Collect(ch chan<- prometheus.Metric) {
	s := m.cache.Stats()

	ch <- prometheus.MustNewConstMetric(m.poolPages, prometheus.GaugeValue, float64(s.PoolPages))
	ch <- prometheus.MustNewConstMetric(m.storedPages, prometheus.GaugeValue, float64(s.StoredPages))
	ch <- prometheus.MustNewConstMetric(m.outstandingWritebacks, prometheus.GaugeValue, float64(s.OutstandingWritebacks))
	ch <- prometheus.MustNewConstMetric(m.poolLimitHit, prometheus.CounterValue, float64(s.PoolLimitHit))
	ch <- prometheus.MustNewConstMetric(m.writtenBackPages, prometheus.CounterValue, float64(s.WrittenBackPages))
	ch <- prometheus.MustNewConstMetric(m.rejectCompressPoor, prometheus.CounterValue, float64(s.RejectCompressPoor))
	ch <- prometheus.MustNewConstMetric(m.writebackAttempted, prometheus.CounterValue, float64(s.WritebackAttempted))
	ch <- prometheus.MustNewConstMetric(m.rejectTmppageFail, prometheus.CounterValue, float64(s.RejectTmppageFail))
	ch <- prometheus.MustNewConstMetric(m.rejectAllocFail, prometheus.CounterValue, float64(s.RejectAllocFail))
	ch <- prometheus.MustNewConstMetric(m.rejectKmemcacheFail, prometheus.CounterValue, float64(s.RejectKmemcacheFail))
	ch <- prometheus.MustNewConstMetric(m.savedByWriteback, prometheus.CounterValue, float64(s.SavedByWriteback))
	ch <- prometheus.MustNewConstMetric(m.duplicateEntry, prometheus.CounterValue, float64(s.DuplicateEntry))
}
