package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfscore/shelfscore-server/internal/domain"
	"github.com/shelfscore/shelfscore-server/internal/service"
	"github.com/shelfscore/shelfscore-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-books",
		Method:      http.MethodGet,
		Path:        "/api/books",
		Summary:     "List books",
		Description: "Returns a filtered, sorted, paginated book listing.",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-book",
		Method:      http.MethodGet,
		Path:        "/api/books/{slug}",
		Summary:     "Get book",
		Description: "Returns a single book by slug or ID.",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-book",
		Method:        http.MethodPost,
		Path:          "/api/books",
		Summary:       "Add book",
		Description:   "Adds a book to the catalog, owned by the caller.",
		Tags:          []string{"Books"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-book",
		Method:      http.MethodPut,
		Path:        "/api/books/{id}",
		Summary:     "Update book",
		Description: "Updates a book. Only the user who added the book may modify it.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-book",
		Method:      http.MethodDelete,
		Path:        "/api/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book and all of its reviews.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// ListBooksInput holds the query parameters for the book listing.
type ListBooksInput struct {
	Page   int    `query:"page" minimum:"1" default:"1" doc:"Page number"`
	Limit  int    `query:"limit" minimum:"1" maximum:"100" default:"10" doc:"Items per page"`
	Genre  string `query:"genre" doc:"Filter by exact genre"`
	Search string `query:"search" doc:"Substring match on title or author"`
	Sort   string `query:"sort" enum:"newest,title,author,rating,year" default:"newest" doc:"Sort order"`
}

// ListBooksResponse is a paginated page of books.
type ListBooksResponse struct {
	Books      []BookResponse     `json:"books" doc:"Books on this page"`
	Pagination PaginationResponse `json:"pagination" doc:"Page metadata"`
}

// ListBooksOutput wraps the listing response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// GetBookInput identifies a book by slug or ID.
type GetBookInput struct {
	Slug string `path:"slug" doc:"Book slug or ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// CreateBookInput wraps the creation request for Huma.
type CreateBookInput struct {
	Body service.CreateBookRequest
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.UpdateBookRequest
}

// DeleteBookInput identifies the book to delete.
type DeleteBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	sort := input.Sort
	if sort == "newest" {
		sort = "" // store default is newest-first
	}

	result, err := s.services.Book.ListBooks(ctx, store.ListBooksParams{
		PaginationParams: store.PaginationParams{Page: input.Page, Limit: input.Limit},
		Genre:            domain.Genre(input.Genre),
		Search:           input.Search,
		Sort:             sort,
	})
	if err != nil {
		return nil, err
	}

	return &ListBooksOutput{Body: ListBooksResponse{
		Books:      mapBooks(result.Items),
		Pagination: mapPagination(result),
	}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.Slug)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, input.ID, userID, input.Body)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, input.ID, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}
