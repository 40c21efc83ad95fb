//go:build darwin

package scan

import (
	"os"
	"syscall"
	"time"
)

func statCreatedAt(stat *syscall.Stat_t, info os.FileInfo) time.Time {
	return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
}
