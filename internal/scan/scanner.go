package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/types"
)

// Options configures one Scan call (spec.md §4.2).
type Options struct {
	Root             string
	Recursive        bool
	FollowSymlinks   bool
	Include          []string // extensions without leading dot; empty = no extension filter
	Exclude          []string // doublestar glob patterns, matched against the path relative to Root
	ModifiedAfter    time.Time
	ModifiedBefore   time.Time
}

// Candidate is one file the scanner decided to surface for probing.
type Candidate struct {
	Path string
	Info fs.FileInfo
}

// Scan walks opts.Root depth-first and returns every file that survives
// the include/exclude/mtime filters (C2, spec.md §4.2). Scan itself does
// not call ProbeFile — callers probe each Candidate so a probe failure
// for one file never aborts the walk.
//
// An I/O error reading the scan root itself is fatal (ScanFailed); a
// transient error on a subdirectory is skipped and the walk continues,
// matching the teacher's own tolerant-walk convention.
func Scan(opts Options) ([]Candidate, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}

	if _, err := os.Stat(root); err != nil {
		return nil, dverrors.NewIngestError(dverrors.ErrorTypeCritical, "scan_root", err).WithFile(root)
	}

	var out []Candidate

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Subdirectory read failure: skip it, keep walking siblings.
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root && !opts.Recursive {
				return fs.SkipDir
			}
			if rel != "." && matchesAny(opts.Exclude, rel, true) {
				return fs.SkipDir
			}
			return nil
		}

		if matchesAny(opts.Exclude, rel, false) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 && !opts.FollowSymlinks {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}

		if len(opts.Include) > 0 && !extensionAllowed(path, opts.Include) {
			return nil
		}

		if !opts.ModifiedAfter.IsZero() && info.ModTime().Before(opts.ModifiedAfter) {
			return nil
		}
		if !opts.ModifiedBefore.IsZero() && info.ModTime().After(opts.ModifiedBefore) {
			return nil
		}

		out = append(out, Candidate{Path: path, Info: info})
		return nil
	})

	if walkErr != nil {
		return nil, dverrors.NewIngestError(dverrors.ErrorTypeCritical, "scan_root", walkErr).WithFile(root)
	}

	return out, nil
}

func matchesAny(patterns []string, rel string, isDir bool) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if isDir {
			if ok, _ := doublestar.Match(strings.TrimSuffix(p, "/**"), rel); ok {
				return true
			}
		}
	}
	return false
}

func extensionAllowed(path string, allow []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, a := range allow {
		if strings.ToLower(a) == ext {
			return true
		}
	}
	return false
}

// FileMetaFromCandidate adapts a Candidate to a types.FileMeta without a
// second stat call, used when the caller already trusts the scan's Info.
func FileMetaFromCandidate(c Candidate) (types.FileMeta, error) {
	if c.Info == nil || c.Info.Mode()&fs.ModeSymlink != 0 {
		return ProbeFile(c.Path)
	}
	normalized, err := NormalizePath(c.Path)
	if err != nil {
		return types.FileMeta{}, dverrors.NewIngestError(dverrors.ErrorTypeMetadataUnavailable, "probe", err).WithFile(c.Path)
	}
	return types.FileMeta{
		FilePath:         normalized,
		FileName:         filepath.Base(normalized),
		FileType:         strings.ToLower(strings.TrimPrefix(filepath.Ext(normalized), ".")),
		FileSize:         c.Info.Size(),
		FileCreatedAt:    fileCreatedAt(c.Info).UTC(),
		FileModifiedTime: c.Info.ModTime().UTC(),
	}, nil
}
