package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfscore/shelfscore-server/internal/domain"
)

const (
	bookPrefix       = "book:"
	bookBySlugPrefix = "idx:books:slug:"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrBookExists    = errors.New("book already exists")
	ErrBookSlugTaken = errors.New("book slug already taken")
)

// Book Operations

// CreateBook creates a new book. The book's slug must be unique; callers
// that hit ErrBookSlugTaken should retry with a disambiguated slug.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)
	slugKey := []byte(bookBySlugPrefix + book.Slug)

	// Use a transaction so the book and its slug index land atomically.
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrBookExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if _, err := txn.Get(slugKey); err == nil {
			return ErrBookSlugTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := setInTxn(txn, key, book); err != nil {
			return err
		}

		return txn.Set(slugKey, []byte(book.ID))
	})
	if err != nil {
		if errors.Is(err, ErrBookExists) || errors.Is(err, ErrBookSlugTaken) {
			return err
		}
		return fmt.Errorf("create book: %w", err)
	}

	s.syncSearchIndex(book)

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book created",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
			slog.String("slug", book.Slug),
		)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	key := []byte(bookPrefix + id)

	var book domain.Book
	err := s.get(key, &book)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// GetBookBySlug retrieves a book by its URL slug.
func (s *Store) GetBookBySlug(ctx context.Context, slug string) (*domain.Book, error) {
	slugKey := []byte(bookBySlugPrefix + slug)

	var bookID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slugKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			bookID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book by slug: %w", err)
	}
	return s.GetBook(ctx, bookID)
}

// SlugExists checks whether a slug is already in use.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.exists([]byte(bookBySlugPrefix + slug))
}

// UpdateBook updates an existing book, keeping the slug index in sync.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	oldBook, err := s.GetBook(ctx, book.ID)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		book.Touch()

		// Update slug index if the slug changed.
		if oldBook.Slug != book.Slug {
			newSlugKey := []byte(bookBySlugPrefix + book.Slug)
			if _, err := txn.Get(newSlugKey); err == nil {
				return ErrBookSlugTaken
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			if err := txn.Delete([]byte(bookBySlugPrefix + oldBook.Slug)); err != nil {
				return err
			}
			if err := txn.Set(newSlugKey, []byte(book.ID)); err != nil {
				return err
			}
		}

		return setInTxn(txn, key, book)
	})
	if err != nil {
		if errors.Is(err, ErrBookSlugTaken) {
			return err
		}
		return fmt.Errorf("update book: %w", err)
	}

	s.syncSearchIndex(book)

	if s.logger != nil {
		s.logger.Info("book updated", "id", book.ID, "title", book.Title)
	}

	return nil
}

// DeleteBook deletes a book, its slug index, and all of its reviews.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return err
	}

	// Cascade: remove reviews before the book so a crash in between leaves
	// no orphaned review index entries.
	if _, err := s.DeleteReviewsForBook(ctx, id); err != nil {
		return fmt.Errorf("delete reviews for book: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(bookPrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(bookBySlugPrefix + book.Slug))
	})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	s.removeFromSearchIndex(id)

	if s.logger != nil {
		s.logger.Info("book deleted", "id", id, "title", book.Title)
	}

	return nil
}

// BookExists checks if a book exists by ID.
func (s *Store) BookExists(ctx context.Context, id string) (bool, error) {
	return s.exists([]byte(bookPrefix + id))
}

// ListBooksParams filters and orders a book listing.
type ListBooksParams struct {
	PaginationParams

	Genre  domain.Genre // Exact genre filter (empty = all)
	Search string       // Case-insensitive substring match on title or author
	Sort   string       // "title", "author", "rating", "year", "recent" (default)
}

// ListBooks returns a filtered, sorted, paginated book listing.
//
// Filtering and sorting happen over a full prefix scan. Badger keeps
// recently read values in its block cache, so this stays cheap at the
// catalog sizes a review site sees; the search index covers anything
// heavier.
func (s *Store) ListBooks(ctx context.Context, params ListBooksParams) (*PaginatedResult[*domain.Book], error) {
	params.Validate()

	books, err := s.ListAllBooks(ctx)
	if err != nil {
		return nil, err
	}

	filtered := books[:0]
	searchTerm := strings.ToLower(strings.TrimSpace(params.Search))
	for _, book := range books {
		if params.Genre != "" && book.Genre != params.Genre {
			continue
		}
		if searchTerm != "" &&
			!strings.Contains(strings.ToLower(book.Title), searchTerm) &&
			!strings.Contains(strings.ToLower(book.Author), searchTerm) {
			continue
		}
		filtered = append(filtered, book)
	}

	sortBooks(filtered, params.Sort)

	return paginate(filtered, params.PaginationParams), nil
}

// sortBooks orders books in place. Ties fall back to title so the order
// is stable across pages.
func sortBooks(books []*domain.Book, sortBy string) {
	switch sortBy {
	case "title":
		sort.Slice(books, func(i, j int) bool {
			return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
		})
	case "author":
		sort.Slice(books, func(i, j int) bool {
			a, b := strings.ToLower(books[i].Author), strings.ToLower(books[j].Author)
			if a != b {
				return a < b
			}
			return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
		})
	case "rating":
		sort.Slice(books, func(i, j int) bool {
			if books[i].AverageRating != books[j].AverageRating {
				return books[i].AverageRating > books[j].AverageRating
			}
			return books[i].ReviewCount > books[j].ReviewCount
		})
	case "year":
		sort.Slice(books, func(i, j int) bool {
			return books[i].PublishedYear > books[j].PublishedYear
		})
	default: // "recent"
		sort.Slice(books, func(i, j int) bool {
			return books[i].CreatedAt.After(books[j].CreatedAt)
		})
	}
}

// ListAllBooks returns all books (non-paginated).
// Used for search reindexing and seeding; prefer ListBooks elsewhere.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book

	prefix := []byte(bookPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list all books: %w", err)
	}

	return books, nil
}
