package zswap_test

import (
	"errors"
	"testing"

	"github.com/kevintm78/zswap/pkg/zswap"
)

func Test_InvalidatePage_Makes_Subsequent_Load_Miss(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t, zswap.Options{})
	cache.InitArea(0)

	mustStore(t, cache, 0, 0x40, fillPage(0x41))

	cache.InvalidatePage(0, 0x40)

	err := cache.Load(0, 0x40, make([]byte, zswap.PageSize))
	if !errors.Is(err, zswap.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if n := cache.Stats().StoredPages; n != 0 {
		t.Fatalf("stored_pages = %d, want 0", n)
	}
}

func Test_InvalidatePage_Twice_Is_Equivalent_To_Once(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t, zswap.Options{})
	cache.InitArea(0)

	mustStore(t, cache, 0, 0x40, fillPage(0x41))

	cache.InvalidatePage(0, 0x40)
	cache.InvalidatePage(0, 0x40)

	err := cache.Load(0, 0x40, make([]byte, zswap.PageSize))
	if !errors.Is(err, zswap.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if n := cache.Stats().StoredPages; n != 0 {
		t.Fatalf("stored_pages = %d, want 0", n)
	}
}

func Test_InvalidatePage_Is_A_Noop_For_Absent_Offsets_And_Areas(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t, zswap.Options{})
	cache.InitArea(0)

	cache.InvalidatePage(0, 0x123)
	cache.InvalidatePage(7, 0x123)
	cache.InvalidatePage(-1, 0x123)
}

func Test_InvalidateArea_Frees_Every_Entry_And_Every_Frame(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t, zswap.Options{SilentPurge: true})
	cache.InitArea(0)

	for off := range uint64(64) {
		mustStore(t, cache, 0, off, patternPage(off))
	}

	if n := cache.Stats().StoredPages; n != 64 {
		t.Fatalf("stored_pages = %d, want 64", n)
	}

	cache.InvalidateArea(0)

	stats := cache.Stats()

	if stats.StoredPages != 0 {
		t.Fatalf("stored_pages after purge = %d, want 0", stats.StoredPages)
	}

	if stats.PoolPages != 0 {
		t.Fatalf("pool_pages after purge = %d, want 0", stats.PoolPages)
	}

	err := cache.Load(0, 0, make([]byte, zswap.PageSize))
	if !errors.Is(err, zswap.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// The area remains usable after the purge.
	mustStore(t, cache, 0, 0x5, fillPage(0x5))
	mustLoad(t, cache, 0, 0x5)
}

func Test_InvalidateArea_Is_A_Noop_For_Unregistered_Areas(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t, zswap.Options{})

	cache.InvalidateArea(0)
	cache.InvalidateArea(100)
}
