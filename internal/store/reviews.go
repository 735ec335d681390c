package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfscore/shelfscore-server/internal/domain"
)

const (
	reviewPrefix           = "review:"
	reviewByBookPrefix     = "idx:reviews:book:"     // idx:reviews:book:<bookID>:<reviewID> -> reviewID
	reviewByBookUserPrefix = "idx:reviews:bookuser:" // idx:reviews:bookuser:<bookID>:<userID> -> reviewID
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("user has already reviewed this book")
)

func reviewByBookKey(bookID, reviewID string) []byte {
	return []byte(reviewByBookPrefix + bookID + ":" + reviewID)
}

func reviewByBookUserKey(bookID, userID string) []byte {
	return []byte(reviewByBookUserPrefix + bookID + ":" + userID)
}

// Review Operations

// CreateReview creates a new review. Each user may review a book at most
// once; a second attempt returns ErrDuplicateReview.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	key := []byte(reviewPrefix + review.ID)
	uniqueKey := reviewByBookUserKey(review.BookID, review.UserID)

	// The uniqueness check and the writes share one transaction so two
	// concurrent reviews by the same user can't both land.
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(uniqueKey); err == nil {
			return ErrDuplicateReview
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := setInTxn(txn, key, review); err != nil {
			return err
		}

		if err := txn.Set(reviewByBookKey(review.BookID, review.ID), []byte(review.ID)); err != nil {
			return err
		}

		return txn.Set(uniqueKey, []byte(review.ID))
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateReview) {
			return err
		}
		return fmt.Errorf("create review: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "review created",
			slog.String("id", review.ID),
			slog.String("book_id", review.BookID),
			slog.String("user_id", review.UserID),
			slog.Int("rating", review.Rating),
		)
	}
	return nil
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	var review domain.Review
	err := s.get([]byte(reviewPrefix+id), &review)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &review, nil
}

// GetReviewByBookAndUser retrieves a user's review of a book, if any.
func (s *Store) GetReviewByBookAndUser(ctx context.Context, bookID, userID string) (*domain.Review, error) {
	var reviewID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(reviewByBookUserKey(bookID, userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			reviewID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review by book and user: %w", err)
	}
	return s.GetReview(ctx, reviewID)
}

// UpdateReview updates a review's rating and text. BookID and UserID are
// immutable, so the indexes never change here.
func (s *Store) UpdateReview(ctx context.Context, review *domain.Review) error {
	key := []byte(reviewPrefix + review.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check review exists: %w", err)
	}
	if !exists {
		return ErrReviewNotFound
	}

	review.Touch()
	if err := s.set(key, review); err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("review updated", "id", review.ID, "book_id", review.BookID)
	}
	return nil
}

// DeleteReview deletes a review and its index entries.
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(reviewPrefix + id)); err != nil {
			return err
		}
		if err := txn.Delete(reviewByBookKey(review.BookID, review.ID)); err != nil {
			return err
		}
		return txn.Delete(reviewByBookUserKey(review.BookID, review.UserID))
	})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("review deleted", "id", id, "book_id", review.BookID)
	}
	return nil
}

// ListReviewsByBook returns a book's reviews, newest first, paginated.
func (s *Store) ListReviewsByBook(ctx context.Context, bookID string, params PaginationParams) (*PaginatedResult[*domain.Review], error) {
	params.Validate()

	reviews, err := s.reviewsForBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	return paginate(reviews, params), nil
}

// reviewsForBook loads all reviews for a book via the book index.
func (s *Store) reviewsForBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	var reviews []*domain.Review

	prefix := []byte(reviewByBookPrefix + bookID + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var reviewID string
			err := it.Item().Value(func(val []byte) error {
				reviewID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			var review domain.Review
			if err := getInTxn(txn, []byte(reviewPrefix+reviewID), &review); err != nil {
				return fmt.Errorf("load review %s: %w", reviewID, err)
			}
			reviews = append(reviews, &review)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews for book: %w", err)
	}

	return reviews, nil
}

// DeleteReviewsForBook removes all reviews for a book.
// Returns the number of reviews removed. Used when a book is deleted.
func (s *Store) DeleteReviewsForBook(ctx context.Context, bookID string) (int, error) {
	reviews, err := s.reviewsForBook(ctx, bookID)
	if err != nil {
		return 0, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, review := range reviews {
			if err := txn.Delete([]byte(reviewPrefix + review.ID)); err != nil {
				return err
			}
			if err := txn.Delete(reviewByBookKey(bookID, review.ID)); err != nil {
				return err
			}
			if err := txn.Delete(reviewByBookUserKey(bookID, review.UserID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete reviews for book: %w", err)
	}

	if s.logger != nil && len(reviews) > 0 {
		s.logger.Info("reviews deleted with book", "book_id", bookID, "count", len(reviews))
	}
	return len(reviews), nil
}

// RecomputeBookRating recalculates a book's denormalized average rating and
// review count from its reviews and persists the result.
//
// The read of the reviews and the write of the book happen in a single
// Badger transaction, so a concurrent review write either lands before the
// recompute (and is counted) or conflicts and retries. The recompute can
// never persist a stale aggregate over a newer one.
func (s *Store) RecomputeBookRating(ctx context.Context, bookID string) (*domain.Book, error) {
	var book domain.Book

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, []byte(bookPrefix+bookID), &book); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		// Sum ratings from the per-book review index inside the txn.
		var sum, count int
		prefix := []byte(reviewByBookPrefix + bookID + ":")

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var reviewID string
			if err := it.Item().Value(func(val []byte) error {
				reviewID = string(val)
				return nil
			}); err != nil {
				return err
			}

			var review domain.Review
			if err := getInTxn(txn, []byte(reviewPrefix+reviewID), &review); err != nil {
				return fmt.Errorf("load review %s: %w", reviewID, err)
			}
			sum += review.Rating
			count++
		}

		if count == 0 {
			book.AverageRating = 0
			book.ReviewCount = 0
		} else {
			avg := float64(sum) / float64(count)
			// Round half up to one decimal place.
			book.AverageRating = math.Floor(avg*10+0.5) / 10
			book.ReviewCount = count
		}

		book.Touch()
		return setInTxn(txn, []byte(bookPrefix+bookID), &book)
	})
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("recompute book rating: %w", err)
	}

	s.syncSearchIndex(&book)

	if s.logger != nil {
		s.logger.Debug("book rating recomputed",
			"book_id", bookID,
			"average_rating", book.AverageRating,
			"review_count", book.ReviewCount,
		)
	}
	return &book, nil
}
