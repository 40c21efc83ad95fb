package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/types"
)

// NewStructuredHandler converts office documents and PDFs to Markdown
// (STRUCTURED_TO_MD, spec.md §4.4). It dispatches on the file's
// extension to whichever library understands that container format;
// an extension inside the structured category that none of the
// extractors below cover still reports ErrorTypeHandlerFailure rather
// than silently producing empty content.
func NewStructuredHandler() Handler {
	return HandlerFunc(func(_ context.Context, meta types.FileMeta) Result {
		var (
			content string
			err     error
		)

		switch meta.FileType {
		case "pdf":
			content, err = pdfToText(meta.FilePath)
		case "docx", "doc":
			content, err = docxToText(meta.FilePath)
		case "xlsx", "xls":
			content, err = xlsxToText(meta.FilePath)
		case "pptx", "ppt":
			err = fmt.Errorf("presentation extraction not supported: %s", meta.FileType)
		default:
			err = fmt.Errorf("unrecognized structured extension: %s", meta.FileType)
		}

		if err != nil {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "structured_convert", err).WithFile(meta.FilePath).WithRecoverable(true)}
		}
		if strings.TrimSpace(content) == "" {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeEmptyConversion, "structured_convert", nil).WithFile(meta.FilePath)}
		}
		return Result{Content: content, Tag: types.ConversionStructuredToMD, Success: true}
	})
}

func pdfToText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

func docxToText(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	return r.Editable().GetContent(), nil
}

func xlsxToText(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		sb.WriteString("## " + sheet + "\n\n")
		for _, row := range rows {
			sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
