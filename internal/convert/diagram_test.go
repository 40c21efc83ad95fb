package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/docvault/internal/types"
)

const sampleDrawio = `<mxfile>
  <diagram name="Page-1">
    <mxGraphModel>
      <root>
        <mxCell value="Start" />
        <mxCell value="End" />
        <mxCell value="" />
      </root>
    </mxGraphModel>
  </diagram>
</mxfile>`

func TestDiagramHandlerExtractsLabels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.drawio")
	require.NoError(t, os.WriteFile(path, []byte(sampleDrawio), 0644))

	h := NewDiagramHandler()
	result := h.Convert(context.Background(), types.FileMeta{FilePath: path, FileType: "drawio"})

	require.True(t, result.Success)
	assert.Contains(t, result.Content, "## Page-1")
	assert.Contains(t, result.Content, "- Start")
	assert.Contains(t, result.Content, "- End")
	assert.Equal(t, types.ConversionDrawioToMD, result.Tag)
}

func TestDiagramHandlerMalformedXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.drawio")
	require.NoError(t, os.WriteFile(path, []byte("<not-xml"), 0644))

	h := NewDiagramHandler()
	result := h.Convert(context.Background(), types.FileMeta{FilePath: path, FileType: "drawio"})

	assert.False(t, result.Success)
}

func TestStripDrawioMarkup(t *testing.T) {
	assert.Equal(t, "a b", stripDrawioMarkup("a<br>b"))
	assert.Equal(t, "x", stripDrawioMarkup("<div>x</div>"))
}
