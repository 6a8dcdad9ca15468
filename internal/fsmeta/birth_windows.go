//go:build windows

package fsmeta

import (
	"os"
	"syscall"
	"time"
)

func birthTime(_ string, info os.FileInfo) (time.Time, bool) {
	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok || data == nil {
		return time.Time{}, false
	}
	ns := data.CreationTime.Nanoseconds()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}
