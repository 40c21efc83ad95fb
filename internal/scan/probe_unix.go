//go:build linux || darwin

package scan

import (
	"os"
	"syscall"
	"time"
)

// fileCreatedAt returns the filesystem birth time where the kernel
// exposes one (Darwin/BSD Birthtimespec), and falls back to ctime on
// Linux, which has no birth time in the classic stat(2) struct
// (spec.md §9 open question).
func fileCreatedAt(info os.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileCreatedAtFallback(info)
	}
	return statCreatedAt(stat, info)
}
