package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfscore/shelfscore-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	index, err := NewIndex(Options{
		DataPath: t.TempDir(),
		Logger:   nil,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = index.Close()
	})

	return index
}

func TestNewIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_IndexBook(t *testing.T) {
	index := setupTestIndex(t)

	doc := &BookDocument{
		ID:     "book-123",
		Title:  "The Hobbit",
		Author: "J.R.R. Tolkien",
		Genre:  "Fantasy",
	}

	require.NoError(t, index.IndexBook(doc))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_IndexBooks_Batch(t *testing.T) {
	index := setupTestIndex(t)

	docs := []*BookDocument{
		{ID: "book-1", Title: "Book One", Genre: "Fiction"},
		{ID: "book-2", Title: "Book Two", Genre: "Fiction"},
		{ID: "book-3", Title: "Book Three", Genre: "Mystery"},
	}

	require.NoError(t, index.IndexBooks(docs))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIndex_DeleteBook(t *testing.T) {
	index := setupTestIndex(t)

	doc := &BookDocument{
		ID:    "book-123",
		Title: "Test Book",
		Genre: "Fiction",
	}

	require.NoError(t, index.IndexBook(doc))
	require.NoError(t, index.DeleteBook("book-123"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func seedBooks(t *testing.T, index *Index) {
	t.Helper()

	docs := []*BookDocument{
		{ID: "book-1", Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1937, AverageRating: 4.5, ReviewCount: 12},
		{ID: "book-2", Title: "The Lord of the Rings", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1954, AverageRating: 4.8, ReviewCount: 30},
		{ID: "book-3", Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", PublishedYear: 1965, AverageRating: 4.2, ReviewCount: 18},
		{ID: "book-4", Title: "In Cold Blood", Author: "Truman Capote", Genre: "Non-Fiction", PublishedYear: 1966, AverageRating: 3.9, ReviewCount: 4},
	}

	require.NoError(t, index.IndexBooks(docs))
}

func TestIndex_Search_ByAuthor(t *testing.T) {
	index := setupTestIndex(t)
	seedBooks(t, index)

	result, err := index.Search(context.Background(), Params{
		Query: "Tolkien",
		Limit: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(2), result.Total)
	for _, hit := range result.Hits {
		assert.Equal(t, "J.R.R. Tolkien", hit.Author)
	}
}

func TestIndex_Search_FuzzyTitle(t *testing.T) {
	index := setupTestIndex(t)
	seedBooks(t, index)

	// One-character typo should still find Dune.
	result, err := index.Search(context.Background(), Params{
		Query: "Dume",
		Limit: 10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-3", result.Hits[0].ID)
}

func TestIndex_Search_GenreFilter(t *testing.T) {
	index := setupTestIndex(t)
	seedBooks(t, index)

	result, err := index.Search(context.Background(), Params{
		Genre: "Fantasy",
		Limit: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(2), result.Total)
	for _, hit := range result.Hits {
		assert.Equal(t, "Fantasy", hit.Genre)
	}
}

func TestIndex_Search_YearRange(t *testing.T) {
	index := setupTestIndex(t)
	seedBooks(t, index)

	result, err := index.Search(context.Background(), Params{
		MinYear: 1960,
		MaxYear: 1970,
		Limit:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(2), result.Total)
}

func TestIndex_Search_MinRating(t *testing.T) {
	index := setupTestIndex(t)
	seedBooks(t, index)

	result, err := index.Search(context.Background(), Params{
		MinRating: 4.0,
		Limit:     10,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(3), result.Total)
}

func TestIndex_Search_GenreFacets(t *testing.T) {
	index := setupTestIndex(t)
	seedBooks(t, index)

	result, err := index.Search(context.Background(), Params{
		Limit:         10,
		IncludeFacets: true,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Genres)
	counts := make(map[string]int)
	for _, fc := range result.Genres {
		counts[fc.Value] = fc.Count
	}
	assert.Equal(t, 2, counts["Fantasy"])
	assert.Equal(t, 1, counts["Science Fiction"])
}

func TestIndex_Search_SortByRating(t *testing.T) {
	index := setupTestIndex(t)
	seedBooks(t, index)

	result, err := index.Search(context.Background(), Params{
		SortBy: "rating",
		Limit:  10,
	})
	require.NoError(t, err)

	require.Len(t, result.Hits, 4)
	assert.Equal(t, "book-2", result.Hits[0].ID)
}

func TestIndex_Rebuild(t *testing.T) {
	index := setupTestIndex(t)
	seedBooks(t, index)

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestBookToDocument(t *testing.T) {
	book := &domain.Book{
		Title:         "Dune",
		Slug:          "dune",
		Author:        "Frank Herbert",
		Description:   "Spice and sand.",
		Genre:         domain.GenreScienceFiction,
		PublishedYear: 1965,
		AverageRating: 4.2,
		ReviewCount:   18,
	}
	book.ID = "book-3"
	book.CreatedAt = time.Now()
	book.UpdatedAt = book.CreatedAt

	doc := BookToDocument(book)

	assert.Equal(t, "book-3", doc.ID)
	assert.Equal(t, "Dune", doc.Title)
	assert.Equal(t, "Science Fiction", doc.Genre)
	assert.Equal(t, 1965, doc.PublishedYear)
	assert.Equal(t, book.CreatedAt.UnixMilli(), doc.CreatedAt)

	m := doc.ToMap()
	assert.Equal(t, "Dune", m["title"])
	assert.Equal(t, "Spice and sand.", m["description"])
}
