package zswap_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kevintm78/zswap/pkg/zswap"
)

func Test_Load_Returns_NotFound_When_Offset_Was_Never_Stored(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t, zswap.Options{})
	cache.InitArea(0)

	err := cache.Load(0, 0x10, make([]byte, zswap.PageSize))
	if !errors.Is(err, zswap.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func Test_Load_Returns_NotFound_When_Area_Is_Not_Registered(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t, zswap.Options{})

	err := cache.Load(3, 0x10, make([]byte, zswap.PageSize))
	if !errors.Is(err, zswap.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func Test_Load_Fails_With_BadInput_When_Destination_Is_Not_PageSize(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t, zswap.Options{})
	cache.InitArea(0)

	mustStore(t, cache, 0, 0x10, fillPage(0x41))

	err := cache.Load(0, 0x10, make([]byte, 1))
	if !errors.Is(err, zswap.ErrBadInput) {
		t.Fatalf("err = %v, want ErrBadInput", err)
	}
}

func Test_Load_Moves_Entry_To_The_MRU_End(t *testing.T) {
	t.Parallel()

	cache, dev := newTestCache(t, zswap.Options{})
	cache.InitArea(0)

	mustStore(t, cache, 0, 0x1, patternPage(0x1))
	mustStore(t, cache, 0, 0x2, patternPage(0x2))

	// Touch 0x1 so 0x2 becomes the eviction candidate.
	mustLoad(t, cache, 0, 0x1)

	freed := cache.Writeback(0, 1)
	if freed != 1 {
		t.Fatalf("freed = %d, want 1", freed)
	}

	dev.Wait()

	if _, ok := dev.ReadSlot(zswap.SwapEntry{Type: 0, Offset: 0x2}); !ok {
		t.Fatal("expected offset 0x2 to be the written-back entry")
	}

	if _, ok := dev.ReadSlot(zswap.SwapEntry{Type: 0, Offset: 0x1}); ok {
		t.Fatal("offset 0x1 must not have been written back")
	}

	// The touched entry is still loadable.
	got := mustLoad(t, cache, 0, 0x1)

	if diff := cmp.Diff(patternPage(0x1), got); diff != "" {
		t.Fatalf("page mismatch (-want +got):\n%s", diff)
	}
}

func Test_Load_Succeeds_Repeatedly_For_The_Same_Offset(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t, zswap.Options{})
	cache.InitArea(0)

	page := patternPage(0x77)

	mustStore(t, cache, 0, 0x77, page)

	for range 5 {
		got := mustLoad(t, cache, 0, 0x77)

		if diff := cmp.Diff(page, got); diff != "" {
			t.Fatalf("page mismatch (-want +got):\n%s", diff)
		}
	}
}
