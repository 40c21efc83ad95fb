// Package scan implements the File Metadata Probe (C1) and Filesystem
// Scanner (C2) from spec.md §4.1–§4.2.
package scan

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizePath is the single canonicalization function every path must
// pass through before it is compared against a stored Document path or
// written to the store (spec.md §9, "Path normalization is load-bearing").
//
// Steps: resolve to absolute, NFC-normalize, replace backslashes with
// forward slashes. NormalizePath is idempotent:
// NormalizePath(NormalizePath(p)) == NormalizePath(p).
func NormalizePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	nfc := norm.NFC.String(abs)
	return strings.ReplaceAll(nfc, "\\", "/"), nil
}

// SamePath reports whether two paths normalize to the same identity,
// using a case-insensitive comparison so the rule holds on filesystems
// where paths are case-insensitive (spec.md §3 invariant (a), §9).
func SamePath(a, b string) bool {
	na, errA := NormalizePath(a)
	nb, errB := NormalizePath(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	return strings.EqualFold(na, nb)
}
