//go:build !linux

package zswap

// totalRAMBytes has no portable implementation; non-Linux callers must
// set Options.TotalRAMBytes.
func totalRAMBytes() (uint64, error) {
	return 0, errNoTotalRAM
}
