package zpool

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"
)

const (
	// FrameSize is the size of every backing frame.
	FrameSize = 4096

	// granularity is the size-class step. Allocation sizes round up to
	// the next multiple.
	granularity = 64

	numClasses = FrameSize / granularity
)

var (
	// ErrNoSpace indicates no frame could be obtained for a new slab.
	ErrNoSpace = errors.New("zpool: no space")
	// ErrTooLarge indicates the requested size exceeds FrameSize. Alloc
	// also returns it for a size of zero or less.
	ErrTooLarge = errors.New("zpool: allocation too large")
	// ErrInvalidOps indicates missing frame callbacks.
	ErrInvalidOps = errors.New("zpool: frame ops are required")
)

// Handle is an opaque token for one allocation. Zero is never valid.
type Handle uint64

// MapMode selects the access direction of a Map window. The pool hands
// out the same window either way; the mode documents intent at call
// sites the way the original allocator's RO/WO mappings do.
type MapMode int

const (
	// ReadOnly maps a handle for reading.
	ReadOnly MapMode = iota
	// WriteOnly maps a handle for writing.
	WriteOnly
)

// Ops supplies backing frames. AllocFrame returns a FrameSize buffer or
// an error under memory pressure; FreeFrame takes the buffer back.
type Ops struct {
	AllocFrame func() ([]byte, error)
	FreeFrame  func([]byte)
}

// slab is one frame carved into equal slots of its class size.
type slab struct {
	id    uint32
	class int // class index; slot size is (class+1)*granularity
	buf   []byte
	free  uint64 // bitmap, bit i set = slot i free
	slots int
}

// Pool is a packed-blob allocator.
type Pool struct {
	mu      sync.Mutex
	ops     Ops
	slabs   map[uint32]*slab
	partial [numClasses]map[uint32]*slab // slabs with at least one free slot
	nextID  uint32
}

// New creates an empty pool over ops.
func New(ops Ops) (*Pool, error) {
	if ops.AllocFrame == nil || ops.FreeFrame == nil {
		return nil, ErrInvalidOps
	}

	p := &Pool{
		ops:    ops,
		slabs:  make(map[uint32]*slab),
		nextID: 1,
	}

	for i := range p.partial {
		p.partial[i] = make(map[uint32]*slab)
	}

	return p, nil
}

// Alloc returns a handle for size bytes.
//
// mayWait permits the slow path; this pool has no blocking allocations,
// so the flag only mirrors the caller's urgency and both paths behave
// the same. The distinction matters to callers that retry after making
// space.
func (p *Pool) Alloc(size int, _ bool) (Handle, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: size %d", ErrTooLarge, size)
	}

	if size > FrameSize {
		return 0, fmt.Errorf("%w: size %d", ErrTooLarge, size)
	}

	class := (size + granularity - 1) / granularity - 1

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.partial[class] {
		return p.takeSlot(s), nil
	}

	frame, err := p.ops.AllocFrame()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoSpace, err)
	}

	slotSize := (class + 1) * granularity
	s := &slab{
		id:    p.nextID,
		class: class,
		buf:   frame,
		slots: FrameSize / slotSize,
	}
	p.nextID++

	if s.slots == 64 {
		s.free = ^uint64(0)
	} else {
		s.free = (uint64(1) << s.slots) - 1
	}

	p.slabs[s.id] = s
	p.partial[class][s.id] = s

	return p.takeSlot(s), nil
}

// takeSlot claims the lowest free slot of s. Caller holds the lock and
// guarantees s has a free slot.
func (p *Pool) takeSlot(s *slab) Handle {
	slot := bits.TrailingZeros64(s.free)
	s.free &^= uint64(1) << slot

	if s.free == 0 {
		delete(p.partial[s.class], s.id)
	}

	return Handle(uint64(s.id)<<16 | uint64(slot))
}

// Free releases the allocation behind h. Freeing an invalid handle is a
// programming error and panics.
func (p *Pool) Free(h Handle) {
	p.mu.Lock()

	s, slot := p.locate(h)

	s.free |= uint64(1) << slot

	full := s.free == ^uint64(0) || (s.slots < 64 && s.free == (uint64(1)<<s.slots)-1)
	if full {
		delete(p.slabs, s.id)
		delete(p.partial[s.class], s.id)
	} else {
		p.partial[s.class][s.id] = s
	}

	p.mu.Unlock()

	if full {
		p.ops.FreeFrame(s.buf)
	}
}

// Map exposes the byte window behind h. The window is the full class
// size, which is at least the allocated size. Pair with Unmap.
func (p *Pool) Map(h Handle, _ MapMode) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, slot := p.locate(h)
	slotSize := (s.class + 1) * granularity

	return s.buf[slot*slotSize : (slot+1)*slotSize]
}

// Unmap ends a Map window. The memory stays addressable, so this is a
// protocol marker only; it exists so callers keep the discipline the
// handle contract requires.
func (p *Pool) Unmap(Handle) {}

// locate resolves a handle to its slab and slot. Caller holds the lock.
func (p *Pool) locate(h Handle) (*slab, int) {
	id := uint32(h >> 16)
	slot := int(h & 0xffff)

	s, ok := p.slabs[id]
	if !ok || slot >= s.slots {
		panic(fmt.Sprintf("zpool: invalid handle %#x", uint64(h)))
	}

	if s.free&(uint64(1)<<slot) != 0 {
		panic(fmt.Sprintf("zpool: handle %#x is not allocated", uint64(h)))
	}

	return s, slot
}

// FramesInUse reports how many frames the pool currently holds.
func (p *Pool) FramesInUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.slabs)
}
