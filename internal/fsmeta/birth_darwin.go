//go:build darwin

package fsmeta

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

func birthTime(path string, _ os.FileInfo) (time.Time, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, false
	}
	if t, ok := unixTime(st.Birthtimespec.Unix()); ok {
		return t, true
	}
	return unixTime(st.Ctimespec.Unix())
}
