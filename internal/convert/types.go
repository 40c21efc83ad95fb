// Package convert implements the Converter Registry (C3) and the
// per-category conversion handlers (C4) from spec.md §4.3–§4.5: taking
// a probed file and producing Markdown (or passing it through
// unchanged) tagged with the conversion type that produced it.
package convert

import (
	"context"

	"github.com/standardbeagle/docvault/internal/types"
)

// Result is what every Handler returns: the converted content (if any),
// the tag describing how it was produced, and a success flag. A
// Handler never panics to signal failure — Success=false with Err set
// is the only failure channel (spec.md §4.4 invariant).
type Result struct {
	Content  string
	Tag      types.ConversionType
	Success  bool
	Err      error
	Provider string // set by image/LLM handlers: which provider produced Content
}

// Handler converts one probed file into Markdown (or passes through
// content unchanged for ConversionDirect). Handlers must honor ctx
// cancellation on any blocking operation (subprocess exec, provider
// HTTP call) per spec.md §5.
type Handler interface {
	Convert(ctx context.Context, meta types.FileMeta) Result
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, meta types.FileMeta) Result

func (f HandlerFunc) Convert(ctx context.Context, meta types.FileMeta) Result {
	return f(ctx, meta)
}
