package convert

import (
	"context"
	"encoding/xml"
	"os"
	"strings"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/types"
)

// drawioFile mirrors the subset of a draw.io/diagrams.net mxfile XML
// document needed to list the labeled shapes on each page.
type drawioFile struct {
	Diagrams []drawioDiagram `xml:"diagram"`
}

type drawioDiagram struct {
	Name  string       `xml:"name,attr"`
	Graph drawioModel  `xml:"mxGraphModel"`
}

type drawioModel struct {
	Cells []drawioCell `xml:"root>mxCell"`
}

type drawioCell struct {
	Value string `xml:"value,attr"`
}

// NewDiagramHandler extracts every labeled shape from a draw.io
// diagram and renders them as a per-page bullet list (DRAWIO_TO_MD,
// spec.md §4.4). draw.io's uncompressed XML format is parsed directly;
// compressed (deflate+base64) diagram payloads are reported as a
// handler failure rather than guessed at. No pack example parses
// draw.io XML, so this uses encoding/xml directly (see DESIGN.md).
func NewDiagramHandler() Handler {
	return HandlerFunc(func(_ context.Context, meta types.FileMeta) Result {
		data, err := os.ReadFile(meta.FilePath)
		if err != nil {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "diagram_read", err).WithFile(meta.FilePath)}
		}

		var doc drawioFile
		if err := xml.Unmarshal(data, &doc); err != nil {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "diagram_parse", err).WithFile(meta.FilePath)}
		}

		var sb strings.Builder
		for _, d := range doc.Diagrams {
			if len(d.Graph.Cells) == 0 {
				// No inline mxGraphModel: the page is stored compressed.
				return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "diagram_compressed_page", nil).WithFile(meta.FilePath)}
			}
			sb.WriteString("## " + d.Name + "\n\n")
			for _, cell := range d.Graph.Cells {
				label := stripDrawioMarkup(cell.Value)
				if label != "" {
					sb.WriteString("- " + label + "\n")
				}
			}
			sb.WriteString("\n")
		}

		content := strings.TrimSpace(sb.String())
		if content == "" {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeEmptyConversion, "diagram_parse", nil).WithFile(meta.FilePath)}
		}
		return Result{Content: content, Tag: types.ConversionDrawioToMD, Success: true}
	})
}

func stripDrawioMarkup(value string) string {
	replacer := strings.NewReplacer("<br>", " ", "<div>", "", "</div>", "", "&nbsp;", " ")
	return strings.TrimSpace(replacer.Replace(value))
}
