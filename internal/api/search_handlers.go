package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfscore/shelfscore-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search-books",
		Method:      http.MethodGet,
		Path:        "/api/search",
		Summary:     "Search books",
		Description: "Full-text search over titles, authors and descriptions with fuzzy matching.",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput holds the query parameters for full-text search.
type SearchInput struct {
	Query     string  `query:"q" required:"true" minLength:"1" maxLength:"200" doc:"Search query"`
	Genre     string  `query:"genre" doc:"Filter by exact genre"`
	MinYear   int     `query:"min_year" minimum:"0" doc:"Minimum published year"`
	MaxYear   int     `query:"max_year" minimum:"0" doc:"Maximum published year"`
	MinRating float64 `query:"min_rating" minimum:"0" maximum:"5" doc:"Minimum average rating"`
	Sort      string  `query:"sort" enum:"relevance,title,author,recent,rating" default:"relevance" doc:"Sort order"`
	Limit     int     `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Maximum hits to return"`
	Offset    int     `query:"offset" minimum:"0" default:"0" doc:"Hits to skip"`
}

// SearchHitResponse is a single search hit.
type SearchHitResponse struct {
	ID            string            `json:"id" doc:"Book ID"`
	Score         float64           `json:"score" doc:"Relevance score"`
	Title         string            `json:"title" doc:"Book title"`
	Author        string            `json:"author" doc:"Author name"`
	Slug          string            `json:"slug" doc:"URL-friendly identifier"`
	Genre         string            `json:"genre" doc:"Book genre"`
	PublishedYear int               `json:"published_year,omitempty" doc:"Year of publication"`
	AverageRating float64           `json:"average_rating" doc:"Average review rating"`
	ReviewCount   int               `json:"review_count" doc:"Number of reviews"`
	Highlights    map[string]string `json:"highlights,omitempty" doc:"Highlighted match fragments"`
}

// GenreFacetResponse is a genre facet bucket.
type GenreFacetResponse struct {
	Genre string `json:"genre" doc:"Genre name"`
	Count int    `json:"count" doc:"Matching books in this genre"`
}

// SearchResponse contains search hits and facets.
type SearchResponse struct {
	Query  string               `json:"query" doc:"Echoed search query"`
	Total  uint64               `json:"total" doc:"Total matching books"`
	TookMs int64                `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResponse  `json:"hits" doc:"Search hits"`
	Genres []GenreFacetResponse `json:"genres,omitempty" doc:"Genre facet counts"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	result, err := s.services.Search.Search(ctx, search.Params{
		Query:         input.Query,
		Genre:         input.Genre,
		MinYear:       input.MinYear,
		MaxYear:       input.MaxYear,
		MinRating:     input.MinRating,
		SortBy:        input.Sort,
		Limit:         input.Limit,
		Offset:        input.Offset,
		IncludeFacets: true,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResponse, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHitResponse{
			ID:            h.ID,
			Score:         h.Score,
			Title:         h.Title,
			Author:        h.Author,
			Slug:          h.Slug,
			Genre:         h.Genre,
			PublishedYear: h.PublishedYear,
			AverageRating: h.AverageRating,
			ReviewCount:   h.ReviewCount,
			Highlights:    h.Highlights,
		}
	}

	genres := make([]GenreFacetResponse, len(result.Genres))
	for i, g := range result.Genres {
		genres[i] = GenreFacetResponse{Genre: g.Value, Count: g.Count}
	}

	return &SearchOutput{Body: SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   hits,
		Genres: genres,
	}}, nil
}
