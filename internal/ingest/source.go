package ingest

import (
	"path/filepath"
	"strings"
)

// DeriveSource labels a document by which immediate child of
// downloadsRoot it was found under (e.g. "Downloads/research/paper.pdf"
// with downloadsRoot "Downloads" derives source "research"). This
// supplements the data model with the original tool's folder-based
// source grouping, which the distilled spec dropped.
func DeriveSource(path, downloadsRoot string) string {
	root := filepath.ToSlash(filepath.Clean(downloadsRoot))
	p := filepath.ToSlash(path)

	rel := strings.TrimPrefix(p, root)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == p {
		return ""
	}

	parts := strings.SplitN(rel, "/", 2)
	if len(parts) < 2 {
		return "" // file sits directly under the root, no child folder
	}
	return parts[0]
}
