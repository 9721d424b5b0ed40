package catalog

import (
	"testing"

	"github.com/projectapp/movies-api/internal/domain"
)

func FuzzItemNormalization(f *testing.F) {
	f.Add(603, "The Matrix", "", "1999-03-31", "", "/matrix.jpg")
	f.Add(1396, "", "Breaking Bad", "", "2008-01-20", "")

	f.Fuzz(func(t *testing.T, id int, title, name, releaseDate, firstAirDate, poster string) {
		payload := itemPayload{
			ID:           id,
			Title:        title,
			Name:         name,
			ReleaseDate:  releaseDate,
			FirstAirDate: firstAirDate,
		}
		if poster != "" {
			payload.PosterPath = &poster
		}

		record := payload.toRecord(domain.MediaTypeMovie)
		if record.TMDBID != id {
			t.Fatalf("id dropped during normalization")
		}
		if title != "" && record.Title != title {
			t.Fatalf("title %q overridden by %q", title, record.Title)
		}
		if title == "" && record.Title != name {
			t.Fatalf("name fallback not applied: %q", record.Title)
		}
		if releaseDate == "" && firstAirDate == "" && record.ReleaseDate != nil {
			t.Fatalf("release date should be nil when both fields are empty")
		}
		if releaseDate != "" && (record.ReleaseDate == nil || *record.ReleaseDate != releaseDate) {
			t.Fatalf("release_date not preserved")
		}
		if record.PosterPath != nil && *record.PosterPath == "" {
			t.Fatalf("empty poster path should normalize to nil")
		}

		summary := payload.toSummary(domain.MediaTypeTV)
		if summary.MediaType != domain.MediaTypeTV {
			t.Fatalf("media type not stamped on summary")
		}
	})
}
