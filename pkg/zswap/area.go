package zswap

import (
	"container/list"
	"sync"

	"github.com/google/btree"
)

// btreeDegree sizes the index B-tree nodes. The tree only needs point
// ops and ordered iteration, so the degree is uncritical.
const btreeDegree = 16

// area is the per-swap-type record.
//
// The lock protects three things:
//   - the ordered index
//   - the LRU list
//   - the refcount field of each entry in the index
//
// Any mutation of those outside the lock is a defect. The lock is held
// only for short non-blocking regions; codec and allocator calls run
// with it dropped and the entry pinned.
type area struct {
	mu    sync.Mutex
	index *btree.BTreeG[*entry]
	lru   *list.List // front = least recently used
	pool  Pool
	typ   int
}

func newArea(typ int, pool Pool) *area {
	return &area{
		index: btree.NewG(btreeDegree, func(a, b *entry) bool {
			return a.offset < b.offset
		}),
		lru:  list.New(),
		pool: pool,
		typ:  typ,
	}
}

// lookup finds the entry at offset, or nil. Caller holds the lock.
func (a *area) lookup(offset uint64) *entry {
	e, ok := a.index.Get(&entry{offset: offset})
	if !ok {
		return nil
	}

	return e
}

// insert adds e to the index. If an entry with the same offset already
// exists it is returned unchanged and e is not inserted. Caller holds
// the lock.
func (a *area) insert(e *entry) *entry {
	if dup, ok := a.index.Get(e); ok {
		return dup
	}

	a.index.ReplaceOrInsert(e)

	return nil
}

// erase removes e from the index. Caller holds the lock.
func (a *area) erase(e *entry) {
	a.index.Delete(e)
}

// lruPushTail appends e at the most-recently-used end. Caller holds the
// lock; e must be detached.
func (a *area) lruPushTail(e *entry) {
	e.elem = a.lru.PushBack(e)
}

// lruPushHead prepends e at the least-recently-used end, the cheapest
// retry posture after a failed writeback. Caller holds the lock; e must
// be detached.
func (a *area) lruPushHead(e *entry) {
	e.elem = a.lru.PushFront(e)
}

// lruPopHead detaches and returns the least-recently-used entry, or nil
// when the list is empty. Caller holds the lock.
func (a *area) lruPopHead() *entry {
	front := a.lru.Front()
	if front == nil {
		return nil
	}

	e := front.Value.(*entry)
	a.lru.Remove(front)
	e.elem = nil

	return e
}

// lruRemove detaches e. Idempotent for already-detached entries. Caller
// holds the lock.
func (a *area) lruRemove(e *entry) {
	if e.elem == nil {
		return
	}

	a.lru.Remove(e.elem)
	e.elem = nil
}
