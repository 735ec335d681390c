// Package search provides full-text book search using Bleve, with fuzzy
// matching, genre faceting, and year range filtering.
package search

import (
	"github.com/shelfscore/shelfscore-server/internal/domain"
)

// BookDocument is the document structure stored in the Bleve index.
//
// Design note: rating and review count are denormalized into the document
// so search results can be rendered without a store round-trip. The
// aggregator reindexes the book whenever they change.
type BookDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	Slug        string `json:"slug"`

	// Genre is a keyword field for exact filtering and faceting.
	Genre string `json:"genre"`

	// Numeric fields for range queries and sorting
	PublishedYear int     `json:"published_year"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`

	// Timestamps for sorting, Unix millis
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *BookDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":             d.ID,
		"title":          d.Title,
		"author":         d.Author,
		"slug":           d.Slug,
		"genre":          d.Genre,
		"published_year": d.PublishedYear,
		"average_rating": d.AverageRating,
		"review_count":   d.ReviewCount,
		"created_at":     d.CreatedAt,
		"updated_at":     d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}

	return m
}

// BookToDocument converts a domain Book to its search document.
func BookToDocument(book *domain.Book) *BookDocument {
	return &BookDocument{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		Slug:          book.Slug,
		Genre:         string(book.Genre),
		PublishedYear: book.PublishedYear,
		AverageRating: book.AverageRating,
		ReviewCount:   book.ReviewCount,
		CreatedAt:     book.CreatedAt.UnixMilli(),
		UpdatedAt:     book.UpdatedAt.UnixMilli(),
	}
}
