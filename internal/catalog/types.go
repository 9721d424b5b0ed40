package catalog

import "github.com/projectapp/movies-api/internal/domain"

// itemPayload covers both movie and TV entries. The upstream catalog names
// the same concepts differently per media type (title/name,
// release_date/first_air_date); normalization happens here and nowhere else.
type itemPayload struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	GenreIDs     []int   `json:"genre_ids"`
}

type pageEnvelope struct {
	Page         int           `json:"page"`
	Results      []itemPayload `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

type detailsPayload struct {
	itemPayload
	Runtime int            `json:"runtime"`
	Tagline string         `json:"tagline"`
	Genres  []domain.Genre `json:"genres"`
}

type creditsPayload struct {
	Cast []domain.CastMember `json:"cast"`
}

func (p itemPayload) displayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Name
}

func (p itemPayload) releaseDate() string {
	if p.ReleaseDate != "" {
		return p.ReleaseDate
	}
	return p.FirstAirDate
}

func (p itemPayload) toSummary(mediaType domain.MediaType) domain.MovieSummary {
	return domain.MovieSummary{
		ID:           p.ID,
		MediaType:    mediaType,
		Title:        p.displayTitle(),
		Overview:     p.Overview,
		PosterPath:   normalizePath(p.PosterPath),
		BackdropPath: normalizePath(p.BackdropPath),
		VoteAverage:  p.VoteAverage,
		ReleaseDate:  p.releaseDate(),
		GenreIDs:     p.GenreIDs,
	}
}

func (p itemPayload) toRecord(mediaType domain.MediaType) domain.MovieRecord {
	rec := domain.MovieRecord{
		TMDBID:     p.ID,
		MediaType:  mediaType,
		Title:      p.displayTitle(),
		Overview:   p.Overview,
		PosterPath: normalizePath(p.PosterPath),
	}
	if date := p.releaseDate(); date != "" {
		rec.ReleaseDate = &date
	}
	return rec
}

func (e pageEnvelope) toPage(mediaType domain.MediaType) *domain.Page {
	results := make([]domain.MovieSummary, 0, len(e.Results))
	for _, item := range e.Results {
		results = append(results, item.toSummary(mediaType))
	}
	return &domain.Page{
		Page:         e.Page,
		Results:      results,
		TotalPages:   e.TotalPages,
		TotalResults: e.TotalResults,
	}
}

func normalizePath(ptr *string) *string {
	if ptr == nil || *ptr == "" {
		return nil
	}
	return ptr
}
