package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/shelfscore/shelfscore-server/internal/domain"
	"github.com/shelfscore/shelfscore-server/internal/store"
)

// RatingAggregator recomputes a book's denormalized rating aggregate from its
// review set. Recomputation runs in a single store transaction; the aggregator
// additionally serializes recomputes per book so concurrent review mutations
// on the same book never hit transaction conflicts.
type RatingAggregator struct {
	store *store.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRatingAggregator creates a rating aggregator backed by the given store.
func NewRatingAggregator(store *store.Store) *RatingAggregator {
	return &RatingAggregator{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// Recompute recalculates average_rating and review_count for a book and
// returns the updated book.
func (a *RatingAggregator) Recompute(ctx context.Context, bookID string) (*domain.Book, error) {
	lock := a.bookLock(bookID)
	lock.Lock()
	defer lock.Unlock()

	book, err := a.store.RecomputeBookRating(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("recompute rating for %s: %w", bookID, err)
	}
	return book, nil
}

// bookLock returns the mutex for a book, creating it on first use. Locks are
// never evicted; the map grows with the number of distinct books mutated in
// one process lifetime, which is small.
func (a *RatingAggregator) bookLock(bookID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	lock, ok := a.locks[bookID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[bookID] = lock
	}
	return lock
}
