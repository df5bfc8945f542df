package zswap_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/kevintm78/zswap/pkg/swapdev"
	"github.com/kevintm78/zswap/pkg/zswap"
)

// testRAM sizes caches large enough that tests never hit the pool
// ceiling unless they mean to. 50% of 64 MiB = 8192 frames.
const testRAM = 64 << 20

// newTestCache builds a cache over a fresh in-memory swap device.
func newTestCache(t *testing.T, opts zswap.Options) (*zswap.Cache, *swapdev.Device) {
	t.Helper()

	dev := swapdev.New()

	if opts.SwapCache == nil {
		opts.SwapCache = dev
	}

	if opts.BlockIO == nil {
		opts.BlockIO = dev
	}

	if opts.TotalRAMBytes == 0 {
		opts.TotalRAMBytes = testRAM
	}

	if opts.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(&bytes.Buffer{})
		opts.Logger = logger
	}

	cache, err := zswap.New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return cache, dev
}

// fillPage returns a page of one repeated byte, highly compressible.
func fillPage(b byte) []byte {
	return bytes.Repeat([]byte{b}, zswap.PageSize)
}

// randomPage returns a deterministic incompressible page.
func randomPage(seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))

	page := make([]byte, zswap.PageSize)
	for i := range page {
		page[i] = byte(rng.Intn(256))
	}

	return page
}

// patternPage returns a compressible page whose content depends on the
// offset, so swapped identities are detectable.
func patternPage(offset uint64) []byte {
	page := make([]byte, zswap.PageSize)
	for i := range page {
		page[i] = byte(offset>>uint(8*(i%4)) + uint64(i/64))
	}

	return page
}

// mustStore admits a page or fails the test.
func mustStore(t *testing.T, c *zswap.Cache, typ int, offset uint64, page []byte) {
	t.Helper()

	err := c.Store(typ, offset, page)
	if err != nil {
		t.Fatalf("Store(%d, %#x): %v", typ, offset, err)
	}
}

// mustLoad reads back a page or fails the test.
func mustLoad(t *testing.T, c *zswap.Cache, typ int, offset uint64) []byte {
	t.Helper()

	page := make([]byte, zswap.PageSize)

	err := c.Load(typ, offset, page)
	if err != nil {
		t.Fatalf("Load(%d, %#x): %v", typ, offset, err)
	}

	return page
}
