package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shelfscore/shelfscore-server/internal/domain"
	"github.com/shelfscore/shelfscore-server/internal/search"
	"github.com/shelfscore/shelfscore-server/internal/store"
)

// SearchService bridges the bleve index with the catalog store. It satisfies
// store.SearchIndexer so book mutations flow into the index, and it executes
// user queries against it.
type SearchService struct {
	index  *search.Index
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search executes a full-text query over the book catalog.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// IndexBook indexes a single book. Called on every book create or update,
// including aggregate recomputes so rating sort stays fresh.
func (s *SearchService) IndexBook(_ context.Context, book *domain.Book) error {
	if err := s.index.IndexBook(search.BookToDocument(book)); err != nil {
		return fmt.Errorf("index book: %w", err)
	}

	s.logger.Debug("indexed book", "id", book.ID, "title", book.Title)
	return nil
}

// DeleteBook removes a book from the index.
func (s *SearchService) DeleteBook(_ context.Context, bookID string) error {
	return s.index.DeleteBook(bookID)
}

// DocumentCount returns the number of indexed books.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the entire index from the store. Heavy; run at startup
// when the mapping version changed or from an admin tool.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	docs := make([]*search.BookDocument, 0, len(books))
	for _, book := range books {
		docs = append(docs, search.BookToDocument(book))
	}

	if len(docs) > 0 {
		if err := s.index.IndexBooks(docs); err != nil {
			return fmt.Errorf("index books: %w", err)
		}
	}

	s.logger.Info("full reindex complete", "documents", len(docs))
	return nil
}

// SyncIfEmpty reindexes the catalog when the index has no documents but the
// store does. Covers the mapping-version rebuild path where NewIndex starts
// from an empty index.
func (s *SearchService) SyncIfEmpty(ctx context.Context) error {
	count, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("document count: %w", err)
	}
	if count > 0 {
		return nil
	}
	return s.ReindexAll(ctx)
}
