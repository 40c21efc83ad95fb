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

func TestTextHandlerWrapsFencedBlock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one"), 0644))

	h := NewTextHandler()
	result := h.Convert(context.Background(), types.FileMeta{FilePath: path, FileType: "txt"})

	require.True(t, result.Success)
	assert.Equal(t, "```txt\nline one\n```\n", result.Content)
	assert.Equal(t, types.ConversionTextToMD, result.Tag)
}

func TestTextHandlerRejectsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0xfd}, 0644))

	h := NewTextHandler()
	result := h.Convert(context.Background(), types.FileMeta{FilePath: path, FileType: "txt"})

	assert.False(t, result.Success)
	assert.Error(t, result.Err)
}

func TestTextHandlerEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	h := NewTextHandler()
	result := h.Convert(context.Background(), types.FileMeta{FilePath: path, FileType: "txt"})

	assert.False(t, result.Success)
}
