package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfscore/shelfscore-server/internal/domain"
)

func TestCreateBook(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := createTestBook("book-1", "test-book")
	require.NoError(t, s.CreateBook(ctx, book))

	got, err := s.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Book", got.Title)
	assert.Equal(t, "test-book", got.Slug)
}

func TestCreateBook_DuplicateID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, createTestBook("book-1", "slug-a")))

	err := s.CreateBook(ctx, createTestBook("book-1", "slug-b"))
	assert.ErrorIs(t, err, ErrBookExists)
}

func TestCreateBook_SlugTaken(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, createTestBook("book-1", "same-slug")))

	err := s.CreateBook(ctx, createTestBook("book-2", "same-slug"))
	assert.ErrorIs(t, err, ErrBookSlugTaken)
}

func TestGetBook_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetBook(context.Background(), "book-missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestGetBookBySlug(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, createTestBook("book-1", "the-hobbit")))

	got, err := s.GetBookBySlug(ctx, "the-hobbit")
	require.NoError(t, err)
	assert.Equal(t, "book-1", got.ID)

	_, err = s.GetBookBySlug(ctx, "no-such-slug")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestSlugExists(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, createTestBook("book-1", "taken")))

	exists, err := s.SlugExists(ctx, "taken")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.SlugExists(ctx, "free")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateBook(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := createTestBook("book-1", "old-slug")
	require.NoError(t, s.CreateBook(ctx, book))

	book.Title = "Updated Title"
	book.Slug = "new-slug"
	require.NoError(t, s.UpdateBook(ctx, book))

	got, err := s.GetBookBySlug(ctx, "new-slug")
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", got.Title)

	// Old slug index must be gone.
	_, err = s.GetBookBySlug(ctx, "old-slug")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestUpdateBook_SlugCollision(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, createTestBook("book-1", "slug-a")))
	book2 := createTestBook("book-2", "slug-b")
	require.NoError(t, s.CreateBook(ctx, book2))

	book2.Slug = "slug-a"
	err := s.UpdateBook(ctx, book2)
	assert.ErrorIs(t, err, ErrBookSlugTaken)
}

func TestDeleteBook_CascadesReviews(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, createTestBook("book-1", "doomed")))
	require.NoError(t, s.CreateReview(ctx, createTestReview("review-1", "book-1", "user-1", 5)))
	require.NoError(t, s.CreateReview(ctx, createTestReview("review-2", "book-1", "user-2", 4)))

	require.NoError(t, s.DeleteBook(ctx, "book-1"))

	_, err := s.GetBook(ctx, "book-1")
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = s.GetBookBySlug(ctx, "doomed")
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = s.GetReview(ctx, "review-1")
	assert.ErrorIs(t, err, ErrReviewNotFound)

	// Users can review a re-created book with the same ID: the composite
	// index entries must be gone too.
	require.NoError(t, s.CreateBook(ctx, createTestBook("book-1", "doomed")))
	assert.NoError(t, s.CreateReview(ctx, createTestReview("review-3", "book-1", "user-1", 3)))
}

func seedCatalog(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	books := []struct {
		id, slug, title, author string
		genre                   domain.Genre
		year                    int
		rating                  float64
		created                 time.Time
	}{
		{"book-1", "the-hobbit", "The Hobbit", "J.R.R. Tolkien", domain.GenreFantasy, 1937, 4.5, time.Now().Add(-3 * time.Hour)},
		{"book-2", "dune", "Dune", "Frank Herbert", domain.GenreScienceFiction, 1965, 4.2, time.Now().Add(-2 * time.Hour)},
		{"book-3", "in-cold-blood", "In Cold Blood", "Truman Capote", domain.GenreNonFiction, 1966, 3.9, time.Now().Add(-1 * time.Hour)},
	}

	for _, b := range books {
		book := &domain.Book{
			Record: domain.Record{
				ID:        b.id,
				CreatedAt: b.created,
				UpdatedAt: b.created,
			},
			Title:         b.title,
			Slug:          b.slug,
			Author:        b.author,
			Genre:         b.genre,
			PublishedYear: b.year,
			AverageRating: b.rating,
			AddedBy:       "user-1",
		}
		require.NoError(t, s.CreateBook(ctx, book))
	}
}

func TestListBooks_Pagination(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	result, err := s.ListBooks(context.Background(), ListBooksParams{
		PaginationParams: PaginationParams{Page: 1, Limit: 2},
	})
	require.NoError(t, err)

	assert.Len(t, result.Items, 2)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Pages)
	assert.True(t, result.HasMore)

	result, err = s.ListBooks(context.Background(), ListBooksParams{
		PaginationParams: PaginationParams{Page: 2, Limit: 2},
	})
	require.NoError(t, err)

	assert.Len(t, result.Items, 1)
	assert.False(t, result.HasMore)
}

func TestListBooks_GenreFilter(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	result, err := s.ListBooks(context.Background(), ListBooksParams{
		Genre: domain.GenreFantasy,
	})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "The Hobbit", result.Items[0].Title)
}

func TestListBooks_Search(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	// Substring of the author, case-insensitive.
	result, err := s.ListBooks(context.Background(), ListBooksParams{
		Search: "tolkien",
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "The Hobbit", result.Items[0].Title)

	// Substring of the title.
	result, err = s.ListBooks(context.Background(), ListBooksParams{
		Search: "cold",
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "In Cold Blood", result.Items[0].Title)
}

func TestListBooks_Sorting(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)
	ctx := context.Background()

	titles := func(result *PaginatedResult[*domain.Book]) []string {
		out := make([]string, 0, len(result.Items))
		for _, b := range result.Items {
			out = append(out, b.Title)
		}
		return out
	}

	result, err := s.ListBooks(ctx, ListBooksParams{Sort: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "In Cold Blood", "The Hobbit"}, titles(result))

	result, err = s.ListBooks(ctx, ListBooksParams{Sort: "rating"})
	require.NoError(t, err)
	assert.Equal(t, []string{"The Hobbit", "Dune", "In Cold Blood"}, titles(result))

	// Default sort is newest first.
	result, err = s.ListBooks(ctx, ListBooksParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"In Cold Blood", "Dune", "The Hobbit"}, titles(result))
}

func TestListAllBooks(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		book := createTestBook(fmt.Sprintf("book-%d", i), fmt.Sprintf("slug-%d", i))
		require.NoError(t, s.CreateBook(ctx, book))
	}

	books, err := s.ListAllBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 5)
}
