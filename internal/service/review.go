package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelfscore/shelfscore-server/internal/domain"
	domainerrors "github.com/shelfscore/shelfscore-server/internal/errors"
	"github.com/shelfscore/shelfscore-server/internal/id"
	"github.com/shelfscore/shelfscore-server/internal/store"
)

// ReviewService manages reviews and keeps each book's rating aggregate in
// step with its review set.
type ReviewService struct {
	store      *store.Store
	aggregator *RatingAggregator
	logger     *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store *store.Store, aggregator *RatingAggregator, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:      store,
		aggregator: aggregator,
		logger:     logger,
	}
}

// CreateReviewRequest contains a new review's data.
type CreateReviewRequest struct {
	BookID     string `json:"book_id" validate:"required"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText string `json:"review_text" validate:"required,min=10,max=1000"`
}

// UpdateReviewRequest contains the editable fields of a review. Nil fields
// are left unchanged.
type UpdateReviewRequest struct {
	Rating     *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	ReviewText *string `json:"review_text,omitempty" validate:"omitempty,min=10,max=1000"`
}

// ReviewWithUser is a review joined with its author's public fields. The
// join is explicit: the service resolves display names itself instead of the
// store layer embedding users into reviews.
type ReviewWithUser struct {
	*domain.Review
	UserDisplayName string `json:"user_display_name"`
	UserAvatarURL   string `json:"user_avatar_url,omitempty"`
}

// CreateReview persists a review and recomputes the book's aggregate. One
// review per user per book.
func (s *ReviewService) CreateReview(ctx context.Context, userID string, req CreateReviewRequest) (*domain.Review, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.store.BookExists(ctx, req.BookID)
	if err != nil {
		return nil, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return nil, domainerrors.NotFound("book not found")
	}

	reviewID, err := id.Generate("review")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		Record: domain.Record{
			ID: reviewID,
		},
		BookID:     req.BookID,
		UserID:     userID,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	}
	review.InitTimestamps()

	if err := s.store.CreateReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrDuplicateReview) {
			return nil, domainerrors.Conflict("you have already reviewed this book")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.recompute(ctx, req.BookID)

	s.logger.Info("Review created", "review_id", reviewID, "book_id", req.BookID, "user_id", userID)
	return review, nil
}

// UpdateReview applies edits to the caller's own review and recomputes the
// book's aggregate.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, userID string, req UpdateReviewRequest) (*domain.Review, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	review, err := s.ownedReview(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.ReviewText != nil {
		review.ReviewText = *req.ReviewText
	}
	review.Touch()

	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.recompute(ctx, review.BookID)
	return review, nil
}

// DeleteReview removes the caller's own review and recomputes the book's
// aggregate.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, userID string) error {
	review, err := s.ownedReview(ctx, reviewID, userID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteReview(ctx, reviewID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.recompute(ctx, review.BookID)

	s.logger.Info("Review deleted", "review_id", reviewID, "user_id", userID)
	return nil
}

// ListReviewsByBook returns a book's reviews newest-first with reviewer
// display names resolved.
func (s *ReviewService) ListReviewsByBook(ctx context.Context, bookID string, params store.PaginationParams) (*store.PaginatedResult[*ReviewWithUser], error) {
	exists, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return nil, domainerrors.NotFound("book not found")
	}

	result, err := s.store.ListReviewsByBook(ctx, bookID, params)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	// Resolve each distinct reviewer once per page.
	type reviewer struct {
		name   string
		avatar string
	}
	reviewers := make(map[string]reviewer, len(result.Items))
	items := make([]*ReviewWithUser, 0, len(result.Items))
	for _, review := range result.Items {
		who, ok := reviewers[review.UserID]
		if !ok {
			user, err := s.store.GetUser(ctx, review.UserID)
			switch {
			case err == nil:
				who = reviewer{name: user.Name(), avatar: user.AvatarURL}
			case errors.Is(err, store.ErrUserNotFound):
				who = reviewer{name: "Deleted user"}
			default:
				return nil, fmt.Errorf("get reviewer: %w", err)
			}
			reviewers[review.UserID] = who
		}
		items = append(items, &ReviewWithUser{
			Review:          review,
			UserDisplayName: who.name,
			UserAvatarURL:   who.avatar,
		})
	}

	return &store.PaginatedResult[*ReviewWithUser]{
		Items:   items,
		Total:   result.Total,
		Page:    result.Page,
		Pages:   result.Pages,
		HasMore: result.HasMore,
	}, nil
}

// recompute refreshes a book's rating aggregate. The review mutation already
// committed; a failed recompute is logged and retried by the next mutation
// rather than failing the request.
func (s *ReviewService) recompute(ctx context.Context, bookID string) {
	if _, err := s.aggregator.Recompute(ctx, bookID); err != nil {
		s.logger.Error("Failed to recompute book rating", "book_id", bookID, "error", err)
	}
}

// ownedReview loads a review and verifies the caller wrote it.
func (s *ReviewService) ownedReview(ctx context.Context, reviewID, userID string) (*domain.Review, error) {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			return nil, domainerrors.NotFound("review not found")
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	if !review.IsOwnedBy(userID) {
		return nil, domainerrors.Forbidden("only the review's author can modify it")
	}
	return review, nil
}
