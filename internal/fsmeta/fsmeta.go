// Package fsmeta reads the raw creation and modification times of files.
package fsmeta

import (
	"fmt"
	"os"
	"time"
)

// Times holds a file's timestamps. A zero value means the platform could not
// supply it.
type Times struct {
	Created  time.Time
	Modified time.Time
}

// Stater reads file times for a path.
type Stater interface {
	FileTimes(path string) (Times, error)
}

// OS reads times from the local filesystem. On Linux and macOS creation is
// the birth time where the filesystem records one and the inode change time
// otherwise; on Windows it is the file's creation time. Other platforms
// report none.
type OS struct{}

func (OS) FileTimes(path string) (Times, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Times{}, fmt.Errorf("stat %s: %w", path, err)
	}
	t := Times{Modified: info.ModTime()}
	if created, ok := birthTime(path, info); ok {
		t.Created = created
	}
	return t, nil
}

// StaterFunc adapts a function to Stater.
type StaterFunc func(path string) (Times, error)

func (f StaterFunc) FileTimes(path string) (Times, error) { return f(path) }

// unixTime converts a stat timestamp, treating the zero timestamp as absent.
func unixTime(sec, nsec int64) (time.Time, bool) {
	if sec == 0 && nsec == 0 {
		return time.Time{}, false
	}
	return time.Unix(sec, nsec), true
}
