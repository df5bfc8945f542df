package zswap

import "errors"

// Store rejection and load error codes.
//
// Implementations MAY wrap these errors with additional context.
// Callers MUST classify errors using errors.Is.
var (
	// ErrNoDevice indicates no area is registered for the swap type.
	ErrNoDevice = errors.New("zswap: no device")
	// ErrOutOfMemory indicates allocation of scaffolding failed.
	ErrOutOfMemory = errors.New("zswap: out of memory")
	// ErrBadInput indicates a malformed page or a codec failure.
	ErrBadInput = errors.New("zswap: bad input")
	// ErrCompressionTooPoor indicates the page did not compress below
	// the admission ratio.
	ErrCompressionTooPoor = errors.New("zswap: compression too poor")
	// ErrAllocFail indicates the packed allocator had no space even
	// after the writeback fallback.
	ErrAllocFail = errors.New("zswap: pool alloc failed")
	// ErrTempPageFail indicates no scratch frame was available to stage
	// the compressed payload for the writeback fallback.
	ErrTempPageFail = errors.New("zswap: no temp page")

	// ErrNotFound indicates the offset is not resident, either because
	// it was never stored or because it was written back.
	ErrNotFound = errors.New("zswap: not found")
)

// errPageExists is the internal writeback outcome for a target page that
// is already present in the swap cache; the entry stays resident.
var errPageExists = errors.New("zswap: swap cache page exists")
