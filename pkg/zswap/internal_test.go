package zswap

import (
	"bytes"
	"testing"
)

func Test_TmppageRing_Returns_Nil_When_Exhausted(t *testing.T) {
	t.Parallel()

	ring := newTmppageRing()

	taken := make([][]byte, 0, tmppagePoolPages)

	for range tmppagePoolPages {
		f := ring.take()
		if f == nil {
			t.Fatal("ring exhausted early")
		}

		if len(f) != 2*PageSize {
			t.Fatalf("frame size %d, want %d", len(f), 2*PageSize)
		}

		taken = append(taken, f)
	}

	if ring.take() != nil {
		t.Fatal("expected nil from empty ring")
	}

	for _, f := range taken {
		ring.give(f)
	}

	if ring.take() == nil {
		t.Fatal("expected frame after give")
	}
}

func Test_FramePool_Refuses_Allocation_At_Ceiling(t *testing.T) {
	t.Parallel()

	var stats counters

	pool := newFramePool(&stats, func() int64 { return 2 })

	f1, err := pool.AllocFrame()
	if err != nil {
		t.Fatal(err)
	}

	f2, err := pool.AllocFrame()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := pool.AllocFrame(); err == nil {
		t.Fatal("expected ceiling rejection")
	}

	if got := stats.poolLimitHit.Load(); got != 1 {
		t.Fatalf("pool_limit_hit = %d, want 1", got)
	}

	if got := stats.poolPages.Load(); got != 2 {
		t.Fatalf("pool_pages = %d, want 2", got)
	}

	pool.FreeFrame(f1)
	pool.FreeFrame(f2)

	if got := stats.poolPages.Load(); got != 0 {
		t.Fatalf("pool_pages after free = %d, want 0", got)
	}

	// Freed frames come back out of the reserve.
	if _, err := pool.AllocFrame(); err != nil {
		t.Fatal(err)
	}
}

func Test_Area_LruRemove_Is_Idempotent_For_Detached_Entries(t *testing.T) {
	t.Parallel()

	a := newArea(0, nil)

	e := &entry{offset: 7, refcount: 1}

	a.lruRemove(e) // detached: no-op

	a.lruPushTail(e)
	a.lruRemove(e)
	a.lruRemove(e)

	if a.lru.Len() != 0 {
		t.Fatalf("lru len = %d, want 0", a.lru.Len())
	}
}

func Test_Area_Insert_Returns_Existing_On_Duplicate_Without_Replacing(t *testing.T) {
	t.Parallel()

	a := newArea(0, nil)

	first := &entry{offset: 42, refcount: 1}
	second := &entry{offset: 42, refcount: 1}

	if dup := a.insert(first); dup != nil {
		t.Fatal("unexpected duplicate on first insert")
	}

	dup := a.insert(second)
	if dup != first {
		t.Fatal("expected the resident entry back")
	}

	if got := a.lookup(42); got != first {
		t.Fatal("duplicate insert must not replace the resident entry")
	}
}

func Test_Area_LruPopHead_Yields_Least_Recently_Used_First(t *testing.T) {
	t.Parallel()

	a := newArea(0, nil)

	e1 := &entry{offset: 1}
	e2 := &entry{offset: 2}
	e3 := &entry{offset: 3}

	a.lruPushTail(e1)
	a.lruPushTail(e2)
	a.lruPushTail(e3)

	// Simulate a failed writeback requeue.
	got := a.lruPopHead()
	if got != e1 {
		t.Fatalf("popped offset %d, want 1", got.offset)
	}

	a.lruPushHead(e1)

	if got := a.lruPopHead(); got != e1 {
		t.Fatalf("popped offset %d, want 1 after head requeue", got.offset)
	}

	if got := a.lruPopHead(); got != e2 {
		t.Fatalf("popped offset %d, want 2", got.offset)
	}

	if got := a.lruPopHead(); got != e3 {
		t.Fatalf("popped offset %d, want 3", got.offset)
	}

	if a.lruPopHead() != nil {
		t.Fatal("expected nil from empty lru")
	}
}

func Test_Entry_Put_Returns_Post_Decrement_Refcount(t *testing.T) {
	t.Parallel()

	e := &entry{refcount: 1}

	e.get()

	if got := e.put(); got != 1 {
		t.Fatalf("put = %d, want 1", got)
	}

	if got := e.put(); got != 0 {
		t.Fatalf("put = %d, want 0", got)
	}

	// put does not clamp at zero; the arithmetic stays exact below it.
	if got := e.put(); got != -1 {
		t.Fatalf("put = %d, want -1", got)
	}
}

func Test_Codecs_Round_Trip_A_Page(t *testing.T) {
	t.Parallel()

	for name, factory := range codecs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			codec, err := factory()
			if err != nil {
				t.Fatal(err)
			}

			src := bytes.Repeat([]byte("zswap page payload! "), PageSize/20+1)[:PageSize]
			dst := make([]byte, 2*PageSize)

			n, err := codec.Compress(src, dst)
			if err != nil {
				t.Fatal(err)
			}

			if n <= 0 || n >= PageSize {
				t.Fatalf("compressed %d bytes, want 0 < n < %d for repetitive input", n, PageSize)
			}

			out := make([]byte, PageSize)

			m, err := codec.Decompress(dst[:n], out)
			if err != nil {
				t.Fatal(err)
			}

			if m != PageSize {
				t.Fatalf("decompressed %d bytes, want %d", m, PageSize)
			}

			if !bytes.Equal(out, src) {
				t.Fatal("round trip mismatch")
			}
		})
	}
}

func Test_ResolveCompressor_Falls_Back_On_Unknown_Name(t *testing.T) {
	t.Parallel()

	name, _, err := resolveCompressor("")
	if err != nil || name != defaultCompressor {
		t.Fatalf("empty name resolved to %q (%v), want %q", name, err, defaultCompressor)
	}

	name, factory, err := resolveCompressor("deflate9000")
	if err != nil {
		t.Fatal(err)
	}

	if name != defaultCompressor || factory == nil {
		t.Fatalf("unknown name resolved to %q, want fallback %q", name, defaultCompressor)
	}
}
