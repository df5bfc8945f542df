package zswap

import "github.com/kevintm78/zswap/pkg/zpool"

// Handle is an opaque token for a compressed payload held by the packed
// allocator. Zero is never a valid handle.
type Handle uint64

// MapMode selects the access direction of a Pool.Map window.
type MapMode int

const (
	// MapRO maps a handle for reading.
	MapRO MapMode = iota
	// MapWO maps a handle for writing.
	MapWO
)

// Pool is the packed-blob allocator serving one swap area.
//
// Alloc returns a handle for size bytes; mayWait permits the slow
// allocation path. Map exposes a byte window of at least the allocated
// size; every Map must be paired with an Unmap before the handle is
// freed.
type Pool interface {
	Alloc(size int, mayWait bool) (Handle, error)
	Free(h Handle)
	Map(h Handle, mode MapMode) []byte
	Unmap(h Handle)
}

// FrameOps is the page-frame source handed to a pool factory. Frames
// are PageSize bytes; AllocFrame fails once the global pool ceiling is
// reached.
type FrameOps interface {
	AllocFrame() ([]byte, error)
	FreeFrame(f []byte)
}

// PoolFactory builds the packed allocator for a new swap area. It is
// called from InitArea and must not block.
type PoolFactory func(ops FrameOps) (Pool, error)

// defaultPoolFactory backs areas with pkg/zpool.
func defaultPoolFactory(ops FrameOps) (Pool, error) {
	p, err := zpool.New(zpool.Ops{
		AllocFrame: ops.AllocFrame,
		FreeFrame:  ops.FreeFrame,
	})
	if err != nil {
		return nil, err
	}

	return zpoolAdapter{p}, nil
}

type zpoolAdapter struct {
	p *zpool.Pool
}

func (z zpoolAdapter) Alloc(size int, mayWait bool) (Handle, error) {
	h, err := z.p.Alloc(size, mayWait)
	if err != nil {
		return 0, err
	}

	return Handle(h), nil
}

func (z zpoolAdapter) Free(h Handle) { z.p.Free(zpool.Handle(h)) }

func (z zpoolAdapter) Map(h Handle, mode MapMode) []byte {
	m := zpool.ReadOnly
	if mode == MapWO {
		m = zpool.WriteOnly
	}

	return z.p.Map(zpool.Handle(h), m)
}

func (z zpoolAdapter) Unmap(h Handle) { z.p.Unmap(zpool.Handle(h)) }
