package convert

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/types"
)

// codeFence maps a recognized source extension to the language tag a
// Markdown renderer expects after the opening fence.
var codeFence = map[string]string{
	"go": "go", "py": "python", "js": "javascript", "ts": "typescript",
	"jsx": "jsx", "tsx": "tsx", "java": "java", "c": "c", "h": "c",
	"cpp": "cpp", "hpp": "cpp", "rs": "rust", "rb": "ruby", "php": "php",
	"sh": "bash", "yaml": "yaml", "yml": "yaml", "json": "json",
	"toml": "toml", "sql": "sql",
}

// NewCodeHandler wraps source code in a language-tagged fenced block
// (CODE_TO_MD, spec.md §4.4). Unlike the plain-text handler it keys the
// fence language off the extension so downstream rendering gets syntax
// highlighting.
func NewCodeHandler() Handler {
	return HandlerFunc(func(_ context.Context, meta types.FileMeta) Result {
		data, err := os.ReadFile(meta.FilePath)
		if err != nil {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "code_read", err).WithFile(meta.FilePath)}
		}
		if !utf8.Valid(data) {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "code_read", fmt.Errorf("not valid utf-8")).WithFile(meta.FilePath)}
		}
		if len(data) == 0 {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeEmptyConversion, "code_read", nil).WithFile(meta.FilePath)}
		}
		lang := codeFence[meta.FileType]
		content := fmt.Sprintf("```%s\n%s\n```\n", lang, string(data))
		return Result{Content: content, Tag: types.ConversionCodeToMD, Success: true}
	})
}
