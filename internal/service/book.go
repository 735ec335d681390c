package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shelfscore/shelfscore-server/internal/domain"
	domainerrors "github.com/shelfscore/shelfscore-server/internal/errors"
	"github.com/shelfscore/shelfscore-server/internal/id"
	"github.com/shelfscore/shelfscore-server/internal/media/images"
	"github.com/shelfscore/shelfscore-server/internal/store"
	"github.com/shelfscore/shelfscore-server/internal/util"
)

// BookService orchestrates catalog operations: create/update/delete with
// ownership checks, slug assignment, thumbnail handling.
type BookService struct {
	store      *store.Store
	thumbnails *images.Storage
	logger     *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *store.Store, thumbnails *images.Storage, logger *slog.Logger) *BookService {
	return &BookService{
		store:      store,
		thumbnails: thumbnails,
		logger:     logger,
	}
}

// CreateBookRequest contains the fields for a new catalog entry.
type CreateBookRequest struct {
	Title         string `json:"title" validate:"required,max=100"`
	Author        string `json:"author" validate:"required,max=50"`
	Description   string `json:"description" validate:"required,max=1000"`
	Genre         string `json:"genre" validate:"required,genre"`
	PublishedYear int    `json:"published_year" validate:"required,published_year"`
}

// UpdateBookRequest contains the editable fields of a book. Nil fields are
// left unchanged.
type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Author        *string `json:"author,omitempty" validate:"omitempty,min=1,max=50"`
	Description   *string `json:"description,omitempty" validate:"omitempty,min=1,max=1000"`
	Genre         *string `json:"genre,omitempty" validate:"omitempty,genre"`
	PublishedYear *int    `json:"published_year,omitempty" validate:"omitempty,published_year"`
}

// CreateBook validates and persists a new book owned by the given user.
// The aggregate starts at zero; the store pushes the book into search.
func (s *BookService) CreateBook(ctx context.Context, ownerID string, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	slug, err := s.assignSlug(ctx, req.Title, bookID)
	if err != nil {
		return nil, err
	}

	book := &domain.Book{
		Record: domain.Record{
			ID: bookID,
		},
		Title:         req.Title,
		Slug:          slug,
		Author:        req.Author,
		Description:   req.Description,
		Genre:         domain.Genre(req.Genre),
		PublishedYear: req.PublishedYear,
		AddedBy:       ownerID,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrBookSlugTaken) {
			return nil, domainerrors.Conflict("a book with this title already exists")
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("Book created", "book_id", bookID, "slug", slug, "added_by", ownerID)
	return book, nil
}

// GetBook resolves a book by slug or by ID. IDs carry the "book-" prefix.
func (s *BookService) GetBook(ctx context.Context, slugOrID string) (*domain.Book, error) {
	var (
		book *domain.Book
		err  error
	)
	if strings.HasPrefix(slugOrID, "book-") {
		book, err = s.store.GetBook(ctx, slugOrID)
		// Titles like "Book One" slugify to "book-one"; fall through to the
		// slug index when the ID lookup misses.
		if errors.Is(err, store.ErrBookNotFound) {
			book, err = s.store.GetBookBySlug(ctx, slugOrID)
		}
	} else {
		book, err = s.store.GetBookBySlug(ctx, slugOrID)
	}
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListBooks returns a filtered, sorted catalog page.
func (s *BookService) ListBooks(ctx context.Context, params store.ListBooksParams) (*store.PaginatedResult[*domain.Book], error) {
	if params.Genre != "" && !params.Genre.IsValid() {
		return nil, domainerrors.Validationf("unknown genre %q", string(params.Genre))
	}

	result, err := s.store.ListBooks(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return result, nil
}

// UpdateBook applies edits to a book the user owns. A title change moves the
// slug with it.
func (s *BookService) UpdateBook(ctx context.Context, bookID, userID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.ownedBook(ctx, bookID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && *req.Title != book.Title {
		book.Title = *req.Title
		// A retitle that slugifies identically (case or punctuation edits)
		// keeps its slug.
		if util.Slugify(book.Title) != book.Slug {
			slug, err := s.assignSlug(ctx, book.Title, book.ID)
			if err != nil {
				return nil, err
			}
			book.Slug = slug
		}
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Genre != nil {
		book.Genre = domain.Genre(*req.Genre)
	}
	if req.PublishedYear != nil {
		book.PublishedYear = *req.PublishedYear
	}
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrBookSlugTaken) {
			return nil, domainerrors.Conflict("a book with this title already exists")
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	return book, nil
}

// DeleteBook removes a book the user owns, all its reviews, its search
// document, and its thumbnail file.
func (s *BookService) DeleteBook(ctx context.Context, bookID, userID string) error {
	book, err := s.ownedBook(ctx, bookID, userID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if book.HasThumbnail() {
		if err := s.thumbnails.Delete(bookID); err != nil {
			s.logger.Warn("Failed to delete thumbnail file", "book_id", bookID, "error", err)
		}
	}

	s.logger.Info("Book deleted", "book_id", bookID, "deleted_by", userID)
	return nil
}

// SetThumbnail validates and stores an uploaded image for a book the user
// owns, computing a blurhash placeholder for clients.
func (s *BookService) SetThumbnail(ctx context.Context, bookID, userID string, data []byte) (*domain.Book, error) {
	book, err := s.ownedBook(ctx, bookID, userID)
	if err != nil {
		return nil, err
	}

	contentType := images.DetectImageType(data)
	if contentType == "" {
		return nil, domainerrors.Validation("file is not a supported image (jpeg, png, gif, webp)")
	}

	if err := s.thumbnails.Save(bookID, data); err != nil {
		return nil, fmt.Errorf("store thumbnail: %w", err)
	}

	hash, err := images.ComputeBlurHash(data)
	if err != nil {
		// A missing placeholder degrades the UI, not the upload.
		s.logger.Warn("Failed to compute blurhash", "book_id", bookID, "error", err)
		hash = ""
	}

	book.Thumbnail = &domain.Thumbnail{
		Path:     s.thumbnails.Path(bookID),
		Format:   contentType,
		Size:     int64(len(data)),
		BlurHash: hash,
	}
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	return book, nil
}

// GetThumbnail returns the raw image bytes and content type for a book.
func (s *BookService) GetThumbnail(ctx context.Context, bookID string) ([]byte, string, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, "", domainerrors.NotFound("book not found")
		}
		return nil, "", fmt.Errorf("get book: %w", err)
	}
	if !book.HasThumbnail() {
		return nil, "", domainerrors.NotFound("book has no thumbnail")
	}

	data, err := s.thumbnails.Get(bookID)
	if err != nil {
		return nil, "", fmt.Errorf("read thumbnail: %w", err)
	}

	return data, book.Thumbnail.Format, nil
}

// ownedBook loads a book and verifies the user added it.
func (s *BookService) ownedBook(ctx context.Context, bookID, userID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.AddedBy != userID {
		return nil, domainerrors.Forbidden("only the user who added this book can modify it")
	}
	return book, nil
}

// assignSlug derives a slug from the title, disambiguating collisions with a
// short suffix from the book's ID so slugs stay unique without a counter.
func (s *BookService) assignSlug(ctx context.Context, title, bookID string) (string, error) {
	slug := util.Slugify(title)
	if slug == "" {
		slug = strings.TrimPrefix(bookID, "book-")
	}

	taken, err := s.store.SlugExists(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if !taken {
		return slug, nil
	}

	suffix := strings.TrimPrefix(bookID, "book-")
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return slug + "-" + strings.ToLower(suffix), nil
}
