package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfscore/shelfscore-server/internal/domain"
	"github.com/shelfscore/shelfscore-server/internal/service"
	"github.com/shelfscore/shelfscore-server/internal/store"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "create-review",
		Method:        http.MethodPost,
		Path:          "/api/reviews",
		Summary:       "Write review",
		Description:   "Creates a review for a book. One review per user per book.",
		Tags:          []string{"Reviews"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-book-reviews",
		Method:      http.MethodGet,
		Path:        "/api/reviews/book/{bookId}",
		Summary:     "List reviews",
		Description: "Returns a book's reviews, newest first.",
		Tags:        []string{"Reviews"},
	}, s.handleListBookReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-review",
		Method:      http.MethodPut,
		Path:        "/api/reviews/{id}",
		Summary:     "Update review",
		Description: "Updates a review. Only the author may modify it.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-review",
		Method:      http.MethodDelete,
		Path:        "/api/reviews/{id}",
		Summary:     "Delete review",
		Description: "Deletes a review and recomputes the book's rating.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReview)
}

// === DTOs ===

// CreateReviewInput wraps the creation request for Huma.
type CreateReviewInput struct {
	Body service.CreateReviewRequest
}

// ReviewOutput wraps a single review for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// ListBookReviewsInput holds the path and query parameters for a book's
// review listing.
type ListBookReviewsInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
	Page   int    `query:"page" minimum:"1" default:"1" doc:"Page number"`
	Limit  int    `query:"limit" minimum:"1" maximum:"100" default:"10" doc:"Items per page"`
}

// ListReviewsResponse is a paginated page of reviews.
type ListReviewsResponse struct {
	Reviews    []ReviewResponse   `json:"reviews" doc:"Reviews on this page"`
	Pagination PaginationResponse `json:"pagination" doc:"Page metadata"`
}

// ListReviewsOutput wraps the listing response for Huma.
type ListReviewsOutput struct {
	Body ListReviewsResponse
}

// UpdateReviewInput wraps the update request for Huma.
type UpdateReviewInput struct {
	ID   string `path:"id" doc:"Review ID"`
	Body service.UpdateReviewRequest
}

// DeleteReviewInput identifies the review to delete.
type DeleteReviewInput struct {
	ID string `path:"id" doc:"Review ID"`
}

// === Handlers ===

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.CreateReview(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: s.mapOwnReview(ctx, review, userID)}, nil
}

func (s *Server) handleListBookReviews(ctx context.Context, input *ListBookReviewsInput) (*ListReviewsOutput, error) {
	result, err := s.services.Review.ListReviewsByBook(ctx, input.BookID, store.PaginationParams{
		Page:  input.Page,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, err
	}

	reviews := make([]ReviewResponse, len(result.Items))
	for i, rw := range result.Items {
		reviews[i] = mapReview(rw)
	}

	return &ListReviewsOutput{Body: ListReviewsResponse{
		Reviews:    reviews,
		Pagination: mapPagination(result),
	}}, nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *UpdateReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.UpdateReview(ctx, input.ID, userID, input.Body)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: s.mapOwnReview(ctx, review, userID)}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *DeleteReviewInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Review.DeleteReview(ctx, input.ID, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Review deleted"}}, nil
}

// mapOwnReview joins a freshly written review with its author for the response.
func (s *Server) mapOwnReview(ctx context.Context, review *domain.Review, userID string) ReviewResponse {
	joined := &service.ReviewWithUser{Review: review}
	if user, err := s.store.GetUser(ctx, userID); err == nil {
		joined.UserDisplayName = user.Name()
		joined.UserAvatarURL = user.AvatarURL
	}
	return mapReview(joined)
}
