package convert

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/types"
)

// NewTextHandler wraps plain-text content (txt, log, csv, tsv, ini,
// cfg, ...) in a fenced code block so it renders predictably as
// Markdown (TEXT_TO_MD, spec.md §4.4).
func NewTextHandler() Handler {
	return HandlerFunc(func(_ context.Context, meta types.FileMeta) Result {
		data, err := os.ReadFile(meta.FilePath)
		if err != nil {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "text_read", err).WithFile(meta.FilePath)}
		}
		if !utf8.Valid(data) {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "text_read", fmt.Errorf("not valid utf-8")).WithFile(meta.FilePath)}
		}
		if len(data) == 0 {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeEmptyConversion, "text_read", nil).WithFile(meta.FilePath)}
		}
		content := fmt.Sprintf("```%s\n%s\n```\n", meta.FileType, string(data))
		return Result{Content: content, Tag: types.ConversionTextToMD, Success: true}
	})
}
