package zswap

import "runtime"

// compSlot pairs a codec context with its scratch destination buffer.
// The buffer is 2*PageSize so a compression attempt that expands the
// input still has room to complete before the admission check rejects
// it.
type compSlot struct {
	codec Codec
	buf   []byte
}

// compPool holds one compSlot per processor.
//
// This is the user-space rendition of the kernel's per-CPU dstmem:
// acquiring a slot stands in for disabling preemption, so the holder
// observes the same buffer from compression until the result is copied
// out. get blocks until a slot is free; holders must not block while
// holding one except on the operations the store path explicitly
// releases around.
type compPool struct {
	slots chan *compSlot
}

func newCompPool(factory CodecFactory) (*compPool, error) {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}

	p := &compPool{slots: make(chan *compSlot, n)}

	for range n {
		codec, err := factory()
		if err != nil {
			return nil, err
		}

		p.slots <- &compSlot{
			codec: codec,
			buf:   make([]byte, 2*PageSize),
		}
	}

	return p, nil
}

func (p *compPool) get() *compSlot {
	return <-p.slots
}

func (p *compPool) put(s *compSlot) {
	p.slots <- s
}
