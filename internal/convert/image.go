package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/standardbeagle/docvault/internal/convert/image"
	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/types"
)

// NewImageHandler adapts an image.Chain to the Handler interface,
// producing IMAGE_TO_MD content and front matter recording which
// provider in the fallback chain actually answered (spec.md §4.5).
func NewImageHandler(chain *image.Chain, frontMatter bool) Handler {
	return HandlerFunc(func(ctx context.Context, meta types.FileMeta) Result {
		desc, provider, err := chain.Describe(ctx, meta.FilePath)
		if err != nil {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeProviderChainExhausted, "image_describe", err).WithFile(meta.FilePath).WithRecoverable(true)}
		}

		content := desc
		if frontMatter {
			var sb strings.Builder
			sb.WriteString("---\n")
			sb.WriteString(fmt.Sprintf("source_file: %s\n", meta.FileName))
			sb.WriteString(fmt.Sprintf("conversion_provider: %s\n", provider))
			sb.WriteString("---\n\n")
			sb.WriteString(desc)
			content = sb.String()
		}

		return Result{Content: content, Tag: types.ConversionImageToMD, Success: true, Provider: provider}
	})
}
