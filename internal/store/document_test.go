package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/docvault/internal/types"
)

func openTestDB(t *testing.T) *DocumentStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "docvault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDocumentStore(db)
}

func TestUpsertAndLookupByPath(t *testing.T) {
	s := openTestDB(t)

	doc := &Document{
		FilePath: "/root/docs/a.md", FileName: "a.md", FileType: "md",
		FileSize: 10, Status: types.StatusPending,
	}
	require.NoError(t, s.Upsert(doc))

	got, err := s.LookupByPath("/root/docs/a.md")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a.md", got.FileName)
	assert.Equal(t, types.StatusPending, got.Status)
}

func TestLookupByPathMissingReturnsNilNil(t *testing.T) {
	s := openTestDB(t)

	got, err := s.LookupByPath("/does/not/exist.md")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertIsIdempotentOnPath(t *testing.T) {
	s := openTestDB(t)

	doc := &Document{FilePath: "/root/docs/a.md", FileName: "a.md", FileType: "md", FileSize: 10, Status: types.StatusPending}
	require.NoError(t, s.Upsert(doc))

	doc2 := &Document{FilePath: "/root/docs/a.md", FileName: "a.md", FileType: "md", FileSize: 20, Status: types.StatusCompleted, Content: "hello"}
	require.NoError(t, s.Upsert(doc2))

	got, err := s.LookupByPath("/root/docs/a.md")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.EqualValues(t, 20, got.FileSize)
	assert.Equal(t, types.StatusCompleted, got.Status)
	assert.Equal(t, "hello", got.Content)
	assert.False(t, got.IngestedAt.IsZero())
}

func TestMarkFailedThenMarkCompleted(t *testing.T) {
	s := openTestDB(t)
	doc := &Document{FilePath: "/root/docs/b.pdf", FileName: "b.pdf", FileType: "pdf", Status: types.StatusPending}
	require.NoError(t, s.Upsert(doc))

	require.NoError(t, s.MarkFailed("/root/docs/b.pdf", assertError{"boom"}))
	got, err := s.LookupByPath("/root/docs/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, got.Status)
	assert.Equal(t, "boom", got.ErrorMessage)

	require.NoError(t, s.MarkCompleted("/root/docs/b.pdf", "extracted text", types.ConversionStructuredToMD, ""))
	got, err = s.LookupByPath("/root/docs/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, got.Status)
	assert.Equal(t, "extracted text", got.Content)
	assert.Empty(t, got.ErrorMessage)
}

func TestBulkDelete(t *testing.T) {
	s := openTestDB(t)
	require.NoError(t, s.Upsert(&Document{FilePath: "/a.md", FileName: "a.md", FileType: "md"}))
	require.NoError(t, s.Upsert(&Document{FilePath: "/b.md", FileName: "b.md", FileType: "md"}))

	n, err := s.BulkDelete([]string{"/a.md", "/b.md", "/nonexistent.md"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := s.LookupByPath("/a.md")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDistinctFileTypes(t *testing.T) {
	s := openTestDB(t)
	require.NoError(t, s.Upsert(&Document{FilePath: "/a.md", FileName: "a.md", FileType: "md"}))
	require.NoError(t, s.Upsert(&Document{FilePath: "/b.pdf", FileName: "b.pdf", FileType: "pdf"}))
	require.NoError(t, s.Upsert(&Document{FilePath: "/c.md", FileName: "c.md", FileType: "md"}))

	fileTypes, err := s.DistinctFileTypes()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"md", "pdf"}, fileTypes)
}

func TestListOrphansReturnsDocumentsNoLongerUnderFolder(t *testing.T) {
	s := openTestDB(t)
	require.NoError(t, s.Upsert(&Document{FilePath: "/root/docs/a.md", FileName: "a.md", FileType: "md", Status: types.StatusCompleted}))
	require.NoError(t, s.Upsert(&Document{FilePath: "/moved/elsewhere/b.md", FileName: "b.md", FileType: "md", Status: types.StatusCompleted}))

	orphans, err := s.ListOrphans("/root/docs", "", "", Page{})
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, "/moved/elsewhere/b.md", orphans[0].FilePath)
}

func TestListOrphansIncludesFailedDocumentsMovedOutOfFolder(t *testing.T) {
	s := openTestDB(t)
	require.NoError(t, s.Upsert(&Document{FilePath: "/root/docs/a.md", FileName: "a.md", FileType: "md", Status: types.StatusCompleted}))
	require.NoError(t, s.Upsert(&Document{FilePath: "/moved/b.md", FileName: "b.md", FileType: "md", Status: types.StatusFailed, ErrorMessage: "bad utf8"}))

	orphans, err := s.ListOrphans("/root/docs", "", "", Page{})
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, "/moved/b.md", orphans[0].FilePath)
}

func TestListOrphansKeywordFilter(t *testing.T) {
	s := openTestDB(t)
	require.NoError(t, s.Upsert(&Document{FilePath: "/a.md", FileName: "a.md", FileType: "md", Status: types.StatusFailed, ErrorMessage: "unsupported file type"}))
	require.NoError(t, s.Upsert(&Document{FilePath: "/b.md", FileName: "b.md", FileType: "md", Status: types.StatusFailed, ErrorMessage: "provider chain exhausted"}))

	orphans, err := s.ListOrphans("", "", "unsupported", Page{})
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, "/a.md", orphans[0].FilePath)
}

func TestListFailedUnderReturnsOnlyFailedDocumentsInFolder(t *testing.T) {
	s := openTestDB(t)
	require.NoError(t, s.Upsert(&Document{FilePath: "/root/docs/a.md", FileName: "a.md", FileType: "md", Status: types.StatusCompleted}))
	require.NoError(t, s.Upsert(&Document{FilePath: "/root/docs/b.md", FileName: "b.md", FileType: "md", Status: types.StatusFailed, ErrorMessage: "bad utf8"}))
	require.NoError(t, s.Upsert(&Document{FilePath: "/other/c.md", FileName: "c.md", FileType: "md", Status: types.StatusFailed, ErrorMessage: "bad utf8"}))

	failed, err := s.ListFailedUnder("/root/docs")
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "/root/docs/b.md", failed[0].FilePath)
}

func TestUpsertPersistsSourceAndSourceURL(t *testing.T) {
	s := openTestDB(t)
	require.NoError(t, s.Upsert(&Document{
		FilePath: "/root/docs/a.md", FileName: "a.md", FileType: "md", Status: types.StatusCompleted,
		Source: "research", SourceURL: "https://example.com/a.md",
	}))

	got, err := s.LookupByPath("/root/docs/a.md")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "research", got.Source)
	assert.Equal(t, "https://example.com/a.md", got.SourceURL)
}

func TestSearchContentMatchesTrigram(t *testing.T) {
	s := openTestDB(t)
	require.NoError(t, s.Upsert(&Document{FilePath: "/a.md", FileName: "a.md", FileType: "md", Status: types.StatusCompleted, Content: "the quick brown fox"}))
	require.NoError(t, s.Upsert(&Document{FilePath: "/b.md", FileName: "b.md", FileType: "md", Status: types.StatusCompleted, Content: "a totally unrelated document"}))

	results, err := s.SearchContent("brown fox", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "/a.md", results[0].FilePath)
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }
