//go:build linux

package fsmeta

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

func birthTime(path string, _ os.FileInfo) (time.Time, bool) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME|unix.STATX_CTIME, &stx)
	if err != nil {
		return time.Time{}, false
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		if t, ok := unixTime(stx.Btime.Sec, int64(stx.Btime.Nsec)); ok {
			return t, true
		}
	}
	if stx.Mask&unix.STATX_CTIME != 0 {
		return unixTime(stx.Ctime.Sec, int64(stx.Ctime.Nsec))
	}
	return time.Time{}, false
}
