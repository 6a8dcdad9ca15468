//go:build !linux && !darwin && !windows

package fsmeta

import (
	"os"
	"time"
)

func birthTime(_ string, _ os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
