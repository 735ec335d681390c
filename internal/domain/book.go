package domain

import "time"

// Field limits enforced on book input.
const (
	MaxTitleLength       = 100
	MaxAuthorLength      = 50
	MaxDescriptionLength = 1000
	MinPublishedYear     = 1000
)

// MaxPublishedYear returns the latest acceptable published year,
// which is the current calendar year.
func MaxPublishedYear() int {
	return time.Now().Year()
}

// Thumbnail holds metadata about a book's stored cover image.
type Thumbnail struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	BlurHash string `json:"blur_hash,omitempty"`
}

// Book represents a book in the catalog. AverageRating and ReviewCount
// are denormalized from the book's reviews and are only written by the
// rating aggregator.
type Book struct {
	Record
	Thumbnail     *Thumbnail `json:"thumbnail,omitempty"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Author        string     `json:"author"`
	Description   string     `json:"description,omitempty"`
	Genre         Genre      `json:"genre"`
	AddedBy       string     `json:"added_by"`
	PublishedYear int        `json:"published_year"`
	AverageRating float64    `json:"average_rating"`
	ReviewCount   int        `json:"review_count"`
}

// HasThumbnail reports whether a cover image has been stored for the book.
func (b *Book) HasThumbnail() bool {
	return b.Thumbnail != nil && b.Thumbnail.Path != ""
}
