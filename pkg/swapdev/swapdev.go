// Package swapdev provides an in-memory swap device.
//
// Device stands in for the two collaborators the zswap writeback path
// needs: the swap cache (find-or-create a page for a swap entry) and
// the block-I/O layer (submit a non-blocking page write). Written
// payloads land in an offset-keyed store readable via ReadSlot, so
// tests and the simulator can observe that a writeback really produced
// a device write.
//
// Writes complete asynchronously; use Wait to drain in-flight I/O.
package swapdev

import (
	"errors"
	"sync"

	"github.com/kevintm78/zswap/pkg/zswap"
)

// ErrWriteFailed is returned from WritePage when write-failure
// injection is armed.
var ErrWriteFailed = errors.New("swapdev: write failed")

// page is a swap-cache page. It is created locked (populating writer
// holds it) and leaves the cache when its I/O completes and the last
// reference is dropped.
type page struct {
	dev *Device
	se  zswap.SwapEntry

	data     []byte
	uptodate bool
	reclaim  bool
	refs     int
	written  bool
}

func (p *page) Data() []byte { return p.data }

func (p *page) SetUptodate() {
	p.dev.mu.Lock()
	p.uptodate = true
	p.dev.mu.Unlock()
}

func (p *page) SetReclaim() {
	p.dev.mu.Lock()
	p.reclaim = true
	p.dev.mu.Unlock()
}

func (p *page) Release() {
	p.dev.mu.Lock()
	p.refs--
	p.dev.reapLocked(p)
	p.dev.mu.Unlock()
}

// Device is an in-memory swap device implementing [zswap.SwapCache] and
// [zswap.BlockIO].
type Device struct {
	mu    sync.Mutex
	cache map[zswap.SwapEntry]*page
	slots map[zswap.SwapEntry][]byte

	failWrites int
	oomGets    int

	inflight sync.WaitGroup
}

// New creates an empty device.
func New() *Device {
	return &Device{
		cache: make(map[zswap.SwapEntry]*page),
		slots: make(map[zswap.SwapEntry][]byte),
	}
}

// GetOrCreatePage finds or creates the swap-cache page for se.
func (d *Device) GetOrCreatePage(se zswap.SwapEntry) (zswap.SwapPage, zswap.SwapCacheStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.cache[se]; ok {
		p.refs++

		return p, zswap.SwapCacheExist
	}

	if d.oomGets > 0 {
		d.oomGets--

		return nil, zswap.SwapCacheNoMem
	}

	p := &page{
		dev:  d,
		se:   se,
		data: make([]byte, zswap.PageSize),
		refs: 1,
	}
	d.cache[se] = p

	return p, zswap.SwapCacheNew
}

// WritePage submits a non-blocking write of p. The payload is copied at
// submission time; done fires once from the completion goroutine.
func (d *Device) WritePage(sp zswap.SwapPage, done func(error)) error {
	p, ok := sp.(*page)
	if !ok {
		return errors.New("swapdev: foreign page")
	}

	d.mu.Lock()

	if d.failWrites > 0 {
		d.failWrites--
		d.mu.Unlock()

		return ErrWriteFailed
	}

	payload := make([]byte, len(p.data))
	copy(payload, p.data)

	d.mu.Unlock()

	d.inflight.Add(1)

	go func() {
		defer d.inflight.Done()

		d.mu.Lock()
		d.slots[p.se] = payload
		p.written = true
		d.reapLocked(p)
		d.mu.Unlock()

		done(nil)
	}()

	return nil
}

// reapLocked drops a written, unreferenced page from the cache, the
// moment the VM would reclaim it.
func (d *Device) reapLocked(p *page) {
	if p.written && p.refs <= 0 {
		delete(d.cache, p.se)
	}
}

// Wait blocks until all submitted writes have completed.
func (d *Device) Wait() {
	d.inflight.Wait()
}

// ReadSlot returns the payload last written for se.
func (d *Device) ReadSlot(se zswap.SwapEntry) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.slots[se]
	if !ok {
		return nil, false
	}

	out := make([]byte, len(b))
	copy(out, b)

	return out, true
}

// Slots reports how many distinct offsets have been written.
func (d *Device) Slots() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.slots)
}

// CachedPages reports how many pages are resident in the swap cache.
func (d *Device) CachedPages() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.cache)
}

// FailNextWrites arms write-failure injection for the next n
// submissions.
func (d *Device) FailNextWrites(n int) {
	d.mu.Lock()
	d.failWrites = n
	d.mu.Unlock()
}

// OOMNextGets arms allocation-failure injection for the next n page
// creations.
func (d *Device) OOMNextGets(n int) {
	d.mu.Lock()
	d.oomGets = n
	d.mu.Unlock()
}
