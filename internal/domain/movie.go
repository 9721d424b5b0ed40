package domain

import (
	"fmt"
	"time"
)

// MediaType distinguishes movies from TV shows in the upstream catalog.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// ParseMediaType validates a caller-supplied media type string.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(s) {
	case MediaTypeMovie, MediaTypeTV:
		return MediaType(s), nil
	}
	return "", fmt.Errorf("invalid media type %q", s)
}

// MovieRecord is the canonical cached catalog entry, keyed by
// (TMDBID, MediaType). Records are inserted once and never updated.
type MovieRecord struct {
	TMDBID      int
	MediaType   MediaType
	Title       string
	Overview    string
	PosterPath  *string
	ReleaseDate *string
	CreatedAt   time.Time
}

// MovieSummary is one entry of a paginated browse/search result.
type MovieSummary struct {
	ID           int       `json:"id"`
	MediaType    MediaType `json:"media_type"`
	Title        string    `json:"title"`
	Overview     string    `json:"overview"`
	PosterPath   *string   `json:"poster_path"`
	BackdropPath *string   `json:"backdrop_path"`
	VoteAverage  float64   `json:"vote_average"`
	ReleaseDate  string    `json:"release_date"`
	GenreIDs     []int     `json:"genre_ids"`
}

// Page mirrors the upstream catalog's paginated envelope.
type Page struct {
	Page         int            `json:"page"`
	Results      []MovieSummary `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// Genre is a catalog genre as returned by the details endpoint.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is one credited actor on a movie.
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
}

// MovieDetails merges the catalog's details and credits endpoints.
type MovieDetails struct {
	MovieSummary
	Runtime int          `json:"runtime"`
	Tagline string       `json:"tagline"`
	Genres  []Genre      `json:"genres"`
	Cast    []CastMember `json:"cast"`
}
