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
	"github.com/projectapp/movies-api/internal/repository"
)

type addFavoriteRequest struct {
	UserID    int64  `json:"user_id"`
	TMDBID    int    `json:"movie_tmdb_id"`
	MediaType string `json:"media_type"`
}

type createListRequest struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

type createListResponse struct {
	Message string `json:"message"`
	ListID  int64  `json:"list_id"`
}

// ListID is optional; when present it must match the path parameter. Clients
// that put the list id in the body instead of the URL still work.
type addListItemRequest struct {
	ListID    int64  `json:"list_id"`
	TMDBID    int    `json:"movie_tmdb_id"`
	MediaType string `json:"media_type"`
}

type favoriteItemResponse struct {
	TMDBID     int     `json:"movie_tmdb_id"`
	Title      *string `json:"title"`
	PosterPath *string `json:"poster_path"`
	PosterURL  *string `json:"poster_url"`
	MediaType  string  `json:"media_type"`
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req addFavoriteRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.UserID <= 0 || req.TMDBID <= 0 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "user_id and movie_tmdb_id are required")
		return
	}
	mediaType, err := parseMediaTypeField(req.MediaType)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := s.ledger.AddFavorite(r.Context(), req.UserID, req.TMDBID, mediaType); err != nil {
		s.respondLedgerError(w, err, "Failed to add favorite")
		return
	}
	s.respondJSON(w, http.StatusCreated, messageResponse{Message: "favorite added"})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, err := parsePathID(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid user id")
		return
	}
	movieID, err := parsePathID(r, "movieID")
	if err != nil || movieID <= 0 {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid movie id")
		return
	}

	if err := s.ledger.RemoveFavorite(r.Context(), userID, int(movieID)); err != nil {
		s.logger.Printf("remove favorite error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove favorite")
		return
	}
	s.respondJSON(w, http.StatusOK, messageResponse{Message: "favorite removed"})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, err := parsePathID(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid user id")
		return
	}

	items, err := s.ledger.ListFavorites(r.Context(), userID)
	if err != nil {
		s.logger.Printf("list favorites error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list favorites")
		return
	}
	s.respondJSON(w, http.StatusOK, toFavoriteResponses(items))
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.UserID <= 0 || strings.TrimSpace(req.Name) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "user_id and name are required")
		return
	}

	listID, err := s.ledger.CreateList(r.Context(), req.UserID, strings.TrimSpace(req.Name))
	if err != nil {
		s.logger.Printf("create list error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create list")
		return
	}
	s.respondJSON(w, http.StatusCreated, createListResponse{Message: "list created", ListID: listID})
}

func (s *Server) handleAddListItem(w http.ResponseWriter, r *http.Request) {
	listID, err := parsePathID(r, "listID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid list id")
		return
	}

	var req addListItemRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.TMDBID <= 0 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "movie_tmdb_id is required")
		return
	}
	if req.ListID != 0 && req.ListID != listID {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "list_id does not match URL")
		return
	}
	mediaType, err := parseMediaTypeField(req.MediaType)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := s.ledger.AddListItem(r.Context(), listID, req.TMDBID, mediaType); err != nil {
		s.respondLedgerError(w, err, "Failed to add list item")
		return
	}
	s.respondJSON(w, http.StatusCreated, messageResponse{Message: "item added"})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	listID, err := parsePathID(r, "listID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid list id")
		return
	}

	items, err := s.ledger.ListItems(r.Context(), listID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("list items error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list items")
		return
	}
	s.respondJSON(w, http.StatusOK, toFavoriteResponses(items))
}

// respondLedgerError maps ledger write failures: upstream resolution
// failures become 502, a missing list 404, anything else 500.
func (s *Server) respondLedgerError(w http.ResponseWriter, err error, fallback string) {
	var upstream *fetch.UpstreamError
	switch {
	case errors.As(err, &upstream):
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Catalog service is unavailable")
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		s.logger.Printf("ledger write error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func toFavoriteResponses(items []domain.FavoriteItem) []favoriteItemResponse {
	out := make([]favoriteItemResponse, 0, len(items))
	for _, item := range items {
		var posterURL *string
		if item.PosterPath != nil && *item.PosterPath != "" {
			u := catalog.GetPosterURL(*item.PosterPath, "")
			posterURL = &u
		}
		out = append(out, favoriteItemResponse{
			TMDBID:     item.TMDBID,
			Title:      item.Title,
			PosterPath: item.PosterPath,
			PosterURL:  posterURL,
			MediaType:  string(item.MediaType),
		})
	}
	return out
}

// parseMediaTypeField validates the optional media_type field, defaulting to
// movie for compatibility with clients that only browse films.
func parseMediaTypeField(raw string) (domain.MediaType, error) {
	if raw == "" {
		return domain.MediaTypeMovie, nil
	}
	return domain.ParseMediaType(raw)
}

func parsePathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
