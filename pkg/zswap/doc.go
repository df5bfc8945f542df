// Package zswap provides a compressed cache for swapped-out pages.
//
// zswap sits between a virtual-memory subsystem and its backing swap
// device. When the VM evicts an anonymous page, the cache compresses the
// page and keeps it in a RAM-based pool instead of writing it out. On
// demand the page is decompressed back. Under pool pressure the cache
// evicts compressed entries by resuming the original writeback to the
// real swap device.
//
// # Basic Usage
//
//	cache, err := zswap.New(zswap.Options{
//	    SwapCache: dev,
//	    BlockIO:   dev,
//	})
//	if err != nil {
//	    // configuration error
//	}
//	cache.InitArea(0)
//
//	// Admit a page
//	err = cache.Store(0, offset, page)
//
//	// Reload it
//	err = cache.Load(0, offset, page)
//
//	// Drop slots when the VM frees them
//	cache.InvalidatePage(0, offset)
//	cache.InvalidateArea(0)
//
// # Concurrency
//
// All methods are safe for concurrent use. Each swap area is protected
// by a single lock covering its index, its LRU list and the refcount of
// every resident entry. Compression and allocator calls happen with the
// lock dropped and the entry kept alive by a pinned refcount.
//
// # Error Handling
//
// Store rejections are sentinel errors classified with errors.Is:
// [ErrNoDevice], [ErrOutOfMemory], [ErrBadInput],
// [ErrCompressionTooPoor], [ErrAllocFail], [ErrTempPageFail]. A
// rejected page is simply not admitted; the caller falls back to the
// direct swap path. Load returns [ErrNotFound] for both absent and
// already-written-back offsets.
package zswap
