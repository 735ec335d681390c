package domain

// Rating bounds and review text limits.
const (
	MinRating           = 1
	MaxRating           = 5
	MinReviewTextLength = 10
	MaxReviewTextLength = 1000
)

// Review is a single user's rating and write-up for a book.
// A user may review a given book at most once.
type Review struct {
	Record
	BookID     string `json:"book_id"`
	UserID     string `json:"user_id"`
	ReviewText string `json:"review_text"`
	Rating     int    `json:"rating"`
}

// IsOwnedBy reports whether the review was written by the given user.
func (r *Review) IsOwnedBy(userID string) bool {
	return r.UserID == userID
}
