package store

// PaginationParams contains page-based pagination request parameters.
type PaginationParams struct {
	Page  int // 1-based page number (defaults to 1)
	Limit int // Items per page (defaults to 10 with a maximum of 100)
}

// PaginatedResult contains paginated data and metadata.
type PaginatedResult[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Pages   int  `json:"pages"`
	HasMore bool `json:"has_more"`
}

// DefaultPaginationParams returns sensible defaults.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{
		Page:  1,
		Limit: 10,
	}
}

// Validate checks and corrects pagination parameters.
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset returns the number of items to skip for the current page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// paginate slices items for the requested page and fills in metadata.
func paginate[T any](items []T, params PaginationParams) *PaginatedResult[T] {
	total := len(items)
	pages := (total + params.Limit - 1) / params.Limit
	if pages == 0 {
		pages = 1
	}

	start := params.Offset()
	if start > total {
		start = total
	}
	end := min(start+params.Limit, total)

	return &PaginatedResult[T]{
		Items:   items[start:end],
		Total:   total,
		Page:    params.Page,
		Pages:   pages,
		HasMore: end < total,
	}
}
