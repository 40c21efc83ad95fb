package convert

import (
	"context"
	"strings"
	"sync"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/docvault/internal/types"
)

// Registry is the thread-safe extension-to-handler map (C3, spec.md
// §4.3). It is built once at startup from config.ConverterTypes and
// read concurrently by every worker in the coordinator's pool, so all
// mutating methods take the write lock and Dispatch takes the read
// lock.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]registered
}

type registered struct {
	tag     types.ConversionType
	handler Handler
}

// NewRegistry returns an empty registry. Register must be called for
// every extension before the first Dispatch.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]registered)}
}

// Register binds every extension in exts (case-insensitive, without a
// leading dot) to handler under tag. Registering an extension twice is
// idempotent: the later call wins, matching a reload of config.
func (r *Registry) Register(tag types.ConversionType, handler Handler, exts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range exts {
		r.handlers[strings.ToLower(ext)] = registered{tag: tag, handler: handler}
	}
}

// Lookup returns the handler bound to ext, if any.
func (r *Registry) Lookup(ext string) (Handler, types.ConversionType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.handlers[strings.ToLower(ext)]
	if !ok {
		return nil, 0, false
	}
	return reg.handler, reg.tag, true
}

// KnownExtensions returns every extension currently registered, used by
// the Scanner when no explicit include list is configured.
func (r *Registry) KnownExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for ext := range r.handlers {
		out = append(out, ext)
	}
	return out
}

// Dispatch routes meta to its registered handler by extension. An
// extension with no registered handler yields a failed Result carrying
// an unsupportedExtensionError (not an IngestError), never a panic (spec.md §4.3 invariant "dispatch must never fail
// silently"). The error message names the closest known extension, so
// a typo like ".markdonw" points the caller at ".markdown" instead of
// a bare "unsupported" message.
func (r *Registry) Dispatch(ctx context.Context, meta types.FileMeta) Result {
	handler, tag, ok := r.Lookup(meta.FileType)
	if !ok {
		// Not wrapped in IngestError: its Error() text is persisted
		// verbatim as the document's error_message (spec.md §4.4), and
		// IngestError's "<type> <op> failed for <path>: " prefix would
		// break the required "Unsupported file type: <ext>" wording.
		return Result{Success: false, Err: unsupportedErr(meta.FileType, r.SuggestExtension(meta.FileType))}
	}

	result := handler.Convert(ctx, meta)
	if result.Tag == 0 && result.Success {
		result.Tag = tag
	}
	return result
}

// SuggestExtension returns the registered extension most similar to
// ext by Levenshtein distance, or "" if nothing is close enough to be
// a plausible typo.
func (r *Registry) SuggestExtension(ext string) string {
	r.mu.RLock()
	known := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		known = append(known, k)
	}
	r.mu.RUnlock()

	best := ""
	var bestSimilarity float32 = -1
	for _, k := range known {
		similarity, err := edlib.StringsSimilarity(ext, k, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = k
		}
	}
	if bestSimilarity >= 0.5 {
		return best
	}
	return ""
}

type unsupportedExtensionError struct {
	ext, suggestion string
}

func unsupportedErr(ext, suggestion string) error {
	return &unsupportedExtensionError{ext: ext, suggestion: suggestion}
}

func (e *unsupportedExtensionError) Error() string {
	if e.suggestion == "" {
		return "Unsupported file type: " + e.ext
	}
	return "Unsupported file type: " + e.ext + " (did you mean ." + e.suggestion + "?)"
}
