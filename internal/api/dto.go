package api

import (
	"time"

	"github.com/shelfscore/shelfscore-server/internal/domain"
	"github.com/shelfscore/shelfscore-server/internal/service"
	"github.com/shelfscore/shelfscore-server/internal/store"
)

// ThumbnailResponse describes a book's cover image.
type ThumbnailResponse struct {
	URL      string `json:"url" doc:"Thumbnail image URL"`
	Format   string `json:"format" doc:"Image format (jpeg, png, webp)"`
	BlurHash string `json:"blur_hash,omitempty" doc:"BlurHash placeholder string"`
}

// BookResponse contains public book information.
type BookResponse struct {
	ID            string             `json:"id" doc:"Book ID"`
	Title         string             `json:"title" doc:"Book title"`
	Slug          string             `json:"slug" doc:"URL-friendly identifier"`
	Author        string             `json:"author" doc:"Author name"`
	Description   string             `json:"description,omitempty" doc:"Book description"`
	Genre         string             `json:"genre" doc:"Book genre"`
	PublishedYear int                `json:"published_year" doc:"Year of publication"`
	AverageRating float64            `json:"average_rating" doc:"Average review rating, 0 when unreviewed"`
	ReviewCount   int                `json:"review_count" doc:"Number of reviews"`
	AddedBy       string             `json:"added_by" doc:"ID of the user who added the book"`
	Thumbnail     *ThumbnailResponse `json:"thumbnail,omitempty" doc:"Cover image, if set"`
	CreatedAt     time.Time          `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt     time.Time          `json:"updated_at" doc:"Last update timestamp"`
}

// ReviewResponse contains a review joined with its author's display name.
type ReviewResponse struct {
	ID              string    `json:"id" doc:"Review ID"`
	BookID          string    `json:"book_id" doc:"Reviewed book ID"`
	UserID          string    `json:"user_id" doc:"Author user ID"`
	UserDisplayName string    `json:"user_display_name" doc:"Author display name"`
	UserAvatarURL   string    `json:"user_avatar_url,omitempty" doc:"Author avatar URL, if set"`
	Rating          int       `json:"rating" doc:"Rating from 1 to 5"`
	ReviewText      string    `json:"review_text" doc:"Review text"`
	CreatedAt       time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt       time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// PaginationResponse carries listing page metadata.
type PaginationResponse struct {
	Current int  `json:"current" doc:"Current page, 1-based"`
	Pages   int  `json:"pages" doc:"Total pages"`
	Total   int  `json:"total" doc:"Total items across all pages"`
	HasMore bool `json:"has_more" doc:"Whether more pages follow"`
}

func mapUser(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

func mapBook(book *domain.Book) BookResponse {
	resp := BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Slug:          book.Slug,
		Author:        book.Author,
		Description:   book.Description,
		Genre:         book.Genre.String(),
		PublishedYear: book.PublishedYear,
		AverageRating: book.AverageRating,
		ReviewCount:   book.ReviewCount,
		AddedBy:       book.AddedBy,
		CreatedAt:     book.CreatedAt,
		UpdatedAt:     book.UpdatedAt,
	}
	if book.HasThumbnail() {
		resp.Thumbnail = &ThumbnailResponse{
			URL:      "/api/thumbnails/" + book.ID,
			Format:   book.Thumbnail.Format,
			BlurHash: book.Thumbnail.BlurHash,
		}
	}
	return resp
}

func mapBooks(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = mapBook(b)
	}
	return out
}

func mapReview(rw *service.ReviewWithUser) ReviewResponse {
	return ReviewResponse{
		ID:              rw.ID,
		BookID:          rw.BookID,
		UserID:          rw.UserID,
		UserDisplayName: rw.UserDisplayName,
		UserAvatarURL:   rw.UserAvatarURL,
		Rating:          rw.Rating,
		ReviewText:      rw.ReviewText,
		CreatedAt:       rw.CreatedAt,
		UpdatedAt:       rw.UpdatedAt,
	}
}

func mapPagination[T any](result *store.PaginatedResult[T]) PaginationResponse {
	return PaginationResponse{
		Current: result.Page,
		Pages:   result.Pages,
		Total:   result.Total,
		HasMore: result.HasMore,
	}
}
