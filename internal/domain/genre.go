package domain

// Genre classifies a book into one of a fixed set of categories.
type Genre string

const (
	GenreFiction        Genre = "Fiction"
	GenreNonFiction     Genre = "Non-Fiction"
	GenreMystery        Genre = "Mystery"
	GenreRomance        Genre = "Romance"
	GenreScienceFiction Genre = "Science Fiction"
	GenreFantasy        Genre = "Fantasy"
	GenreThriller       Genre = "Thriller"
	GenreBiography      Genre = "Biography"
	GenreHistory        Genre = "History"
	GenreSelfHelp       Genre = "Self-Help"
	GenreOther          Genre = "Other"
)

// Genres returns all valid genres in display order.
func Genres() []Genre {
	return []Genre{
		GenreFiction,
		GenreNonFiction,
		GenreMystery,
		GenreRomance,
		GenreScienceFiction,
		GenreFantasy,
		GenreThriller,
		GenreBiography,
		GenreHistory,
		GenreSelfHelp,
		GenreOther,
	}
}

// IsValid reports whether g is one of the known genres.
func (g Genre) IsValid() bool {
	switch g {
	case GenreFiction, GenreNonFiction, GenreMystery, GenreRomance,
		GenreScienceFiction, GenreFantasy, GenreThriller,
		GenreBiography, GenreHistory, GenreSelfHelp, GenreOther:
		return true
	}
	return false
}

func (g Genre) String() string {
	return string(g)
}
