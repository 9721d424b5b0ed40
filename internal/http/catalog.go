package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/projectapp/movies-api/internal/catalog"
	"github.com/projectapp/movies-api/internal/domain"
	"github.com/projectapp/movies-api/internal/fetch"
)

type movieRecordResponse struct {
	TMDBID      int     `json:"movie_tmdb_id"`
	MediaType   string  `json:"media_type"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate *string `json:"release_date"`
}

// Browse and search read the upstream catalog directly; they never touch the
// movie record store.
func (s *Server) handleGetPopular(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageParam(r.URL.Query().Get("page"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid page value")
		return
	}

	result, err := s.catalog.GetPopular(r.Context(), page)
	if err != nil {
		s.respondCatalogError(w, err, "Failed to fetch popular movies")
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetTopRated(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageParam(r.URL.Query().Get("page"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid page value")
		return
	}

	result, err := s.catalog.GetTopRated(r.Context(), page)
	if err != nil {
		s.respondCatalogError(w, err, "Failed to fetch top rated movies")
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "q parameter is required")
		return
	}
	page, err := parsePageParam(r.URL.Query().Get("page"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid page value")
		return
	}

	result, err := s.catalog.Search(r.Context(), query, page)
	if err != nil {
		s.respondCatalogError(w, err, "Search failed")
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleMovieDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid movie id")
		return
	}

	details, err := s.catalog.GetDetails(r.Context(), id)
	if err != nil {
		if catalog.IsNotFound(err) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.respondCatalogError(w, err, "Failed to fetch movie details")
		return
	}
	s.respondJSON(w, http.StatusOK, details)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.ListAll(r.Context())
	if err != nil {
		s.logger.Printf("list records error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list cached movies")
		return
	}
	s.respondJSON(w, http.StatusOK, toRecordResponses(records))
}

func (s *Server) respondCatalogError(w http.ResponseWriter, err error, fallback string) {
	var upstream *fetch.UpstreamError
	if errors.As(err, &upstream) {
		s.logger.Printf("catalog upstream error: %v", err)
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Catalog service is unavailable")
		return
	}
	s.logger.Printf("catalog error: %v", err)
	s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}

func toRecordResponses(records []domain.MovieRecord) []movieRecordResponse {
	out := make([]movieRecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, movieRecordResponse{
			TMDBID:      record.TMDBID,
			MediaType:   string(record.MediaType),
			Title:       record.Title,
			Overview:    record.Overview,
			PosterPath:  record.PosterPath,
			ReleaseDate: record.ReleaseDate,
		})
	}
	return out
}

func parsePageParam(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, errors.New("invalid page")
	}
	return page, nil
}
