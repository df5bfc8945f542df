package zswap

import "sync"

// tmppagePoolPages is the fixed capacity of the scratch page ring. Each
// frame is 2*PageSize, mirroring the compression scratch buffers it
// stages payloads out of.
const tmppagePoolPages = 16

// tmppageRing stages a compressed payload out of a compression slot
// when the store path must release the slot to block on the writeback
// fallback. take returns nil when the ring is exhausted; the store path
// converts that into a tmppage-fail rejection.
type tmppageRing struct {
	mu    sync.Mutex
	pages [][]byte
}

func newTmppageRing() *tmppageRing {
	r := &tmppageRing{pages: make([][]byte, 0, tmppagePoolPages)}
	for range tmppagePoolPages {
		r.pages = append(r.pages, make([]byte, 2*PageSize))
	}

	return r
}

func (r *tmppageRing) take() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.pages)
	if n == 0 {
		return nil
	}

	p := r.pages[n-1]
	r.pages = r.pages[:n-1]

	return p
}

func (r *tmppageRing) give(p []byte) {
	r.mu.Lock()
	r.pages = append(r.pages, p)
	r.mu.Unlock()
}
