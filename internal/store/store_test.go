package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfscore/shelfscore-server/internal/domain"
)

// setupTestStore creates a Store backed by a temporary Badger directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// createTestBook builds a book ready for CreateBook.
func createTestBook(id, slug string) *domain.Book {
	now := time.Now()
	return &domain.Book{
		Record: domain.Record{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:         "Test Book",
		Slug:          slug,
		Author:        "Test Author",
		Description:   "A test book description",
		Genre:         domain.GenreFiction,
		PublishedYear: 2001,
		AddedBy:       "user-1",
	}
}

// createTestReview builds a review ready for CreateReview.
func createTestReview(id, bookID, userID string, rating int) *domain.Review {
	now := time.Now()
	return &domain.Review{
		Record: domain.Record{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookID:     bookID,
		UserID:     userID,
		Rating:     rating,
		ReviewText: "This review is long enough to pass validation.",
	}
}
