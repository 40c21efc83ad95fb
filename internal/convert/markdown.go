package convert

import (
	"context"
	"os"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/types"
)

// NewMarkdownHandler returns the DIRECT passthrough handler: native
// Markdown files are stored byte-for-byte, tagged ConversionDirect
// (spec.md §4.4, conversion type DIRECT).
func NewMarkdownHandler() Handler {
	return HandlerFunc(func(_ context.Context, meta types.FileMeta) Result {
		data, err := os.ReadFile(meta.FilePath)
		if err != nil {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "markdown_read", err).WithFile(meta.FilePath)}
		}
		content := string(data)
		if content == "" {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeEmptyConversion, "markdown_read", nil).WithFile(meta.FilePath)}
		}
		return Result{Content: content, Tag: types.ConversionDirect, Success: true}
	})
}
