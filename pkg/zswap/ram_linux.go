//go:build linux

package zswap

import "golang.org/x/sys/unix"

// totalRAMBytes reports the machine's physical memory.
func totalRAMBytes() (uint64, error) {
	var info unix.Sysinfo_t

	err := unix.Sysinfo(&info)
	if err != nil {
		return 0, err
	}

	return uint64(info.Totalram) * uint64(info.Unit), nil
}
