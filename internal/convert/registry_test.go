package convert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/docvault/internal/types"
)

func okHandler(tag types.ConversionType) Handler {
	return HandlerFunc(func(_ context.Context, meta types.FileMeta) Result {
		return Result{Content: "converted", Tag: tag, Success: true}
	})
}

func TestRegistryDispatchKnownExtension(t *testing.T) {
	r := NewRegistry()
	r.Register(types.ConversionTextToMD, okHandler(types.ConversionTextToMD), "txt")

	result := r.Dispatch(context.Background(), types.FileMeta{FilePath: "/x/a.txt", FileType: "txt"})
	require.True(t, result.Success)
	assert.Equal(t, types.ConversionTextToMD, result.Tag)
}

func TestRegistryDispatchUnknownExtension(t *testing.T) {
	r := NewRegistry()
	r.Register(types.ConversionTextToMD, okHandler(types.ConversionTextToMD), "txt")

	result := r.Dispatch(context.Background(), types.FileMeta{FilePath: "/x/a.docx", FileType: "docx"})
	assert.False(t, result.Success)
	assert.Error(t, result.Err)
}

func TestRegistryLookupCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(types.ConversionTextToMD, okHandler(types.ConversionTextToMD), "TXT")

	_, _, ok := r.Lookup("txt")
	assert.True(t, ok)
}

func TestRegistryKnownExtensions(t *testing.T) {
	r := NewRegistry()
	r.Register(types.ConversionTextToMD, okHandler(types.ConversionTextToMD), "txt", "log")

	exts := r.KnownExtensions()
	assert.ElementsMatch(t, []string{"txt", "log"}, exts)
}

func TestRegistrySuggestExtensionTypo(t *testing.T) {
	r := NewRegistry()
	r.Register(types.ConversionDirect, okHandler(types.ConversionDirect), "markdown")

	suggestion := r.SuggestExtension("markdonw")
	assert.Equal(t, "markdown", suggestion)
}

func TestRegistrySuggestExtensionNoClosematch(t *testing.T) {
	r := NewRegistry()
	r.Register(types.ConversionDirect, okHandler(types.ConversionDirect), "markdown")

	suggestion := r.SuggestExtension("zzzzzzzzzz")
	assert.Empty(t, suggestion)
}

func TestRegistryReRegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	r.Register(types.ConversionTextToMD, okHandler(types.ConversionTextToMD), "txt")
	r.Register(types.ConversionCodeToMD, okHandler(types.ConversionCodeToMD), "txt")

	_, tag, ok := r.Lookup("txt")
	require.True(t, ok)
	assert.Equal(t, types.ConversionCodeToMD, tag)
}
