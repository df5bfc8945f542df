package zswap

// SwapEntry identifies one page-granular slot of one swap area.
type SwapEntry struct {
	Type   int
	Offset uint64
}

// SwapCacheStatus is the outcome of [SwapCache.GetOrCreatePage].
type SwapCacheStatus int

const (
	// SwapCacheNew means a fresh page was created and is locked; the
	// caller must populate it before submitting I/O.
	SwapCacheNew SwapCacheStatus = iota
	// SwapCacheExist means the page is already present and unlocked;
	// the caller must not write it.
	SwapCacheExist
	// SwapCacheNoMem means no page could be allocated.
	SwapCacheNoMem
)

// SwapPage is a page owned by the swap-cache collaborator.
//
// Data returns the PageSize payload buffer. SetUptodate and SetReclaim
// mark the page contents valid and eligible for reclaim after I/O;
// both are idempotent. Release drops the caller's reference.
type SwapPage interface {
	Data() []byte
	SetUptodate()
	SetReclaim()
	Release()
}

// SwapCache is the outbound swap-cache collaborator.
//
// GetOrCreatePage finds or creates the swap-cache page for se. On
// [SwapCacheNoMem] the returned page is nil.
type SwapCache interface {
	GetOrCreatePage(se SwapEntry) (SwapPage, SwapCacheStatus)
}

// BlockIO is the outbound block-I/O collaborator.
//
// WritePage submits a non-blocking swap write. On successful
// submission, done is invoked exactly once when the I/O completes. A
// non-nil return means the write was never submitted and done will not
// be called.
type BlockIO interface {
	WritePage(p SwapPage, done func(error)) error
}
