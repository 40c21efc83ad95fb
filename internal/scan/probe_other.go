//go:build !linux && !darwin

package scan

import (
	"os"
	"time"
)

// fileCreatedAt has no birth-time source on this platform, so it
// degrades to mtime.
func fileCreatedAt(info os.FileInfo) time.Time {
	return fileCreatedAtFallback(info)
}
