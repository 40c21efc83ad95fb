package convert

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/types"
)

// xmindTopic mirrors the subset of XMind's content.json topic schema
// needed to render an outline: a title and nested child topics.
type xmindTopic struct {
	Title    string `json:"title"`
	Children struct {
		Attached []xmindTopic `json:"attached"`
	} `json:"children"`
}

type xmindSheet struct {
	RootTopic xmindTopic `json:"rootTopic"`
}

// NewXMindHandler renders an XMind mind map's outline as nested
// Markdown headings and bullet lists (XMIND_TO_MD, spec.md §4.4).
// XMind files are zip archives containing content.json (newer format)
// or content.xml (legacy); only content.json is supported here. No
// example repo in the corpus parses XMind, so this handler reads the
// archive with the standard library directly (see DESIGN.md).
func NewXMindHandler() Handler {
	return HandlerFunc(func(_ context.Context, meta types.FileMeta) Result {
		sheets, err := readXMindSheets(meta.FilePath)
		if err != nil {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "xmind_convert", err).WithFile(meta.FilePath)}
		}
		if len(sheets) == 0 {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeEmptyConversion, "xmind_convert", nil).WithFile(meta.FilePath)}
		}

		var sb strings.Builder
		for _, sheet := range sheets {
			renderXMindTopic(&sb, sheet.RootTopic, 1)
		}
		return Result{Content: sb.String(), Tag: types.ConversionXMindToMD, Success: true}
	})
}

func readXMindSheets(path string) ([]xmindSheet, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "content.json" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, err
		}
		var sheets []xmindSheet
		if err := json.Unmarshal(data, &sheets); err != nil {
			return nil, err
		}
		return sheets, nil
	}
	return nil, fmt.Errorf("content.json not found in xmind archive")
}

func renderXMindTopic(sb *strings.Builder, topic xmindTopic, depth int) {
	if depth == 1 {
		sb.WriteString("# " + topic.Title + "\n\n")
	} else {
		sb.WriteString(strings.Repeat("  ", depth-2) + "- " + topic.Title + "\n")
	}
	for _, child := range topic.Children.Attached {
		renderXMindTopic(sb, child, depth+1)
	}
}
