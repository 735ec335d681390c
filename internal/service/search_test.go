package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfscore/shelfscore-server/internal/search"
	"github.com/shelfscore/shelfscore-server/internal/store"
)

// setupSearchTest creates a search service over a store and a bleve index.
// The store's async indexer hook stays unset so index contents are
// deterministic; the tests drive the service directly.
func setupSearchTest(t *testing.T) (*SearchService, *store.Store) {
	t.Helper()

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewIndex(search.Options{
		DataPath: filepath.Join(tmpDir, "search"),
		Logger:   testLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	searchService := NewSearchService(index, s, testLogger())
	return searchService, s
}

func TestSearchService_ReindexAll(t *testing.T) {
	searchService, s := setupSearchTest(t)
	ctx := context.Background()

	seedBook(t, s, "book-1")
	seedBook(t, s, "book-2")

	require.NoError(t, searchService.ReindexAll(ctx))

	count, err := searchService.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	result, err := searchService.Search(ctx, search.Params{
		Query: "seed author",
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestSearchService_IndexAndDeleteBook(t *testing.T) {
	searchService, s := setupSearchTest(t)
	ctx := context.Background()

	book := seedBook(t, s, "book-1")
	require.NoError(t, searchService.IndexBook(ctx, book))

	count, err := searchService.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	require.NoError(t, searchService.DeleteBook(ctx, book.ID))

	count, err = searchService.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchService_SyncIfEmpty(t *testing.T) {
	searchService, s := setupSearchTest(t)
	ctx := context.Background()

	seedBook(t, s, "book-1")

	require.NoError(t, searchService.SyncIfEmpty(ctx))

	count, err := searchService.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
