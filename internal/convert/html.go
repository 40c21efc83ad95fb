package convert

import (
	"context"
	"os"
	"strings"

	"golang.org/x/net/html"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/types"
)

// NewHTMLHandler strips tags and extracts readable text from HTML
// documents (HTML_TO_MD, spec.md §4.4), preserving heading structure as
// Markdown headings where it can.
func NewHTMLHandler() Handler {
	return HandlerFunc(func(_ context.Context, meta types.FileMeta) Result {
		f, err := os.Open(meta.FilePath)
		if err != nil {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "html_read", err).WithFile(meta.FilePath)}
		}
		defer f.Close()

		doc, err := html.Parse(f)
		if err != nil {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "html_parse", err).WithFile(meta.FilePath)}
		}

		var sb strings.Builder
		extractHTMLText(doc, &sb)
		content := strings.TrimSpace(sb.String())
		if content == "" {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeEmptyConversion, "html_parse", nil).WithFile(meta.FilePath)}
		}
		return Result{Content: content, Tag: types.ConversionHTMLToMD, Success: true}
	})
}

var headingPrefix = map[string]string{
	"h1": "# ", "h2": "## ", "h3": "### ",
	"h4": "#### ", "h5": "##### ", "h6": "###### ",
}

func extractHTMLText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}

	if n.Type == html.ElementNode {
		if prefix, ok := headingPrefix[n.Data]; ok {
			sb.WriteString(prefix)
		}
	}

	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractHTMLText(c, sb)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "br":
			sb.WriteString("\n")
		}
	}
}
