package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/projectapp/movies-api/internal/config"
	"github.com/projectapp/movies-api/internal/domain"
	"github.com/projectapp/movies-api/internal/fetch"
	"github.com/projectapp/movies-api/internal/repository"
)

type favoriteCall struct {
	userID    int64
	tmdbID    int
	mediaType domain.MediaType
}

type fakeLedger struct {
	addFavoriteErr error
	addItemErr     error
	itemsErr       error
	favorites      []domain.FavoriteItem
	items          []domain.FavoriteItem
	listID         int64
	calls          []favoriteCall
	removed        []favoriteCall
}

func (f *fakeLedger) AddFavorite(_ context.Context, userID int64, tmdbID int, mediaType domain.MediaType) error {
	f.calls = append(f.calls, favoriteCall{userID, tmdbID, mediaType})
	return f.addFavoriteErr
}

func (f *fakeLedger) RemoveFavorite(_ context.Context, userID int64, tmdbID int) error {
	f.removed = append(f.removed, favoriteCall{userID: userID, tmdbID: tmdbID})
	return nil
}

func (f *fakeLedger) ListFavorites(_ context.Context, _ int64) ([]domain.FavoriteItem, error) {
	return f.favorites, nil
}

func (f *fakeLedger) CreateList(_ context.Context, _ int64, _ string) (int64, error) {
	return f.listID, nil
}

func (f *fakeLedger) AddListItem(_ context.Context, _ int64, tmdbID int, mediaType domain.MediaType) error {
	f.calls = append(f.calls, favoriteCall{0, tmdbID, mediaType})
	return f.addItemErr
}

func (f *fakeLedger) ListItems(_ context.Context, _ int64) ([]domain.FavoriteItem, error) {
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	return f.items, nil
}

type fakeCatalog struct {
	page       *domain.Page
	details    *domain.MovieDetails
	err        error
	lastQuery  string
	lastPage   int
	detailsID  int
	getByIDErr error
}

func (f *fakeCatalog) GetPopular(_ context.Context, page int) (*domain.Page, error) {
	f.lastPage = page
	return f.page, f.err
}

func (f *fakeCatalog) GetTopRated(_ context.Context, page int) (*domain.Page, error) {
	f.lastPage = page
	return f.page, f.err
}

func (f *fakeCatalog) Search(_ context.Context, query string, page int) (*domain.Page, error) {
	f.lastQuery = query
	f.lastPage = page
	return f.page, f.err
}

func (f *fakeCatalog) GetDetails(_ context.Context, id int) (*domain.MovieDetails, error) {
	f.detailsID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id int, mediaType domain.MediaType) (domain.MovieRecord, error) {
	if f.getByIDErr != nil {
		return domain.MovieRecord{}, f.getByIDErr
	}
	return domain.MovieRecord{TMDBID: id, MediaType: mediaType}, nil
}

type fakeRecords struct {
	records []domain.MovieRecord
	err     error
}

func (f *fakeRecords) ListAll(_ context.Context) ([]domain.MovieRecord, error) {
	return f.records, f.err
}

func buildTestServer(tb testing.TB, ledger *fakeLedger, gateway *fakeCatalog, records *fakeRecords) *Server {
	tb.Helper()
	cfg := config.Config{
		Port:             "0",
		ReadTimeoutSecs:  15,
		WriteTimeoutSecs: 15,
		IdleTimeoutSecs:  60,
	}
	if ledger == nil {
		ledger = &fakeLedger{}
	}
	if gateway == nil {
		gateway = &fakeCatalog{page: &domain.Page{Results: []domain.MovieSummary{}}}
	}
	if records == nil {
		records = &fakeRecords{}
	}

	logger := log.New(io.Discard, "", 0)
	srv := New(cfg, nil, records, gateway, ledger, logger)
	// Replace chi router to avoid default middleware noise.
	srv.router = chi.NewRouter()
	srv.registerRoutes()
	return srv
}

func doRequest(srv *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewBuffer(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleAddFavorite(t *testing.T) {
	ledger := &fakeLedger{}
	srv := buildTestServer(t, ledger, nil, nil)

	body := []byte(`{"user_id":7,"movie_tmdb_id":603,"media_type":"movie"}`)
	rec := doRequest(srv, http.MethodPost, "/favorites", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if len(ledger.calls) != 1 {
		t.Fatalf("ledger calls = %d, want 1", len(ledger.calls))
	}
	call := ledger.calls[0]
	if call.userID != 7 || call.tmdbID != 603 || call.mediaType != domain.MediaTypeMovie {
		t.Fatalf("call = %+v", call)
	}
}

func TestHandleAddFavoriteValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing ids", `{"media_type":"movie"}`, http.StatusUnprocessableEntity},
		{"zero user", `{"user_id":0,"movie_tmdb_id":603}`, http.StatusUnprocessableEntity},
		{"bad media type", `{"user_id":7,"movie_tmdb_id":603,"media_type":"book"}`, http.StatusUnprocessableEntity},
		{"malformed json", `{not json`, http.StatusUnprocessableEntity},
		{"empty body", ``, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{}
			srv := buildTestServer(t, ledger, nil, nil)
			rec := doRequest(srv, http.MethodPost, "/favorites", []byte(tt.body))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if len(ledger.calls) != 0 {
				t.Fatalf("ledger reached despite invalid payload")
			}
		})
	}
}

func TestHandleAddFavoriteUpstreamFailure(t *testing.T) {
	ledger := &fakeLedger{addFavoriteErr: &fetch.UpstreamError{StatusCode: 500}}
	srv := buildTestServer(t, ledger, nil, nil)

	body := []byte(`{"user_id":7,"movie_tmdb_id":603}`)
	rec := doRequest(srv, http.MethodPost, "/favorites", body)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != "UPSTREAM_ERROR" {
		t.Fatalf("code = %s, want UPSTREAM_ERROR", resp.Code)
	}
}

func TestHandleListFavorites(t *testing.T) {
	title := "The Matrix"
	poster := "/matrix.jpg"
	ledger := &fakeLedger{favorites: []domain.FavoriteItem{
		{TMDBID: 603, MediaType: domain.MediaTypeMovie, Title: &title, PosterPath: &poster},
	}}
	srv := buildTestServer(t, ledger, nil, nil)

	rec := doRequest(srv, http.MethodGet, "/favorites/7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var items []favoriteItemResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 || items[0].TMDBID != 603 || *items[0].Title != "The Matrix" {
		t.Fatalf("items = %+v", items)
	}
	if items[0].PosterURL == nil || *items[0].PosterURL != "https://image.tmdb.org/t/p/w500/matrix.jpg" {
		t.Fatalf("poster_url = %v", items[0].PosterURL)
	}
}

func TestHandleListFavoritesMissingRecordHasNoPosterURL(t *testing.T) {
	ledger := &fakeLedger{favorites: []domain.FavoriteItem{
		{TMDBID: 603, MediaType: domain.MediaTypeMovie},
	}}
	srv := buildTestServer(t, ledger, nil, nil)

	rec := doRequest(srv, http.MethodGet, "/favorites/7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var items []favoriteItemResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 || items[0].Title != nil || items[0].PosterURL != nil {
		t.Fatalf("items = %+v", items)
	}
}

func TestHandleRemoveFavorite(t *testing.T) {
	ledger := &fakeLedger{}
	srv := buildTestServer(t, ledger, nil, nil)

	rec := doRequest(srv, http.MethodDelete, "/favorites/7/603", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(ledger.removed) != 1 {
		t.Fatalf("remove calls = %d, want 1", len(ledger.removed))
	}
	if call := ledger.removed[0]; call.userID != 7 || call.tmdbID != 603 {
		t.Fatalf("call = %+v", call)
	}
}

func TestHandleRemoveFavoriteInvalidIDs(t *testing.T) {
	ledger := &fakeLedger{}
	srv := buildTestServer(t, ledger, nil, nil)

	rec := doRequest(srv, http.MethodDelete, "/favorites/abc/603", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(ledger.removed) != 0 {
		t.Fatalf("ledger reached despite invalid path")
	}
}

func TestHandleListFavoritesInvalidUserID(t *testing.T) {
	srv := buildTestServer(t, nil, nil, nil)
	rec := doRequest(srv, http.MethodGet, "/favorites/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCreateList(t *testing.T) {
	ledger := &fakeLedger{listID: 42}
	srv := buildTestServer(t, ledger, nil, nil)

	rec := doRequest(srv, http.MethodPost, "/lists", []byte(`{"user_id":7,"name":"Watch later"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp createListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ListID != 42 {
		t.Fatalf("list_id = %d, want 42", resp.ListID)
	}
}

func TestHandleCreateListValidation(t *testing.T) {
	srv := buildTestServer(t, nil, nil, nil)
	rec := doRequest(srv, http.MethodPost, "/lists", []byte(`{"user_id":7,"name":"  "}`))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestHandleAddListItemUnknownList(t *testing.T) {
	ledger := &fakeLedger{addItemErr: repository.ErrNotFound}
	srv := buildTestServer(t, ledger, nil, nil)

	rec := doRequest(srv, http.MethodPost, "/lists/42/items", []byte(`{"movie_tmdb_id":603}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleAddListItemBodyListID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"matching list_id", `{"list_id":42,"movie_tmdb_id":603}`, http.StatusCreated},
		{"omitted list_id", `{"movie_tmdb_id":603}`, http.StatusCreated},
		{"mismatched list_id", `{"list_id":9,"movie_tmdb_id":603}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{}
			srv := buildTestServer(t, ledger, nil, nil)
			rec := doRequest(srv, http.MethodPost, "/lists/42/items", []byte(tt.body))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandleListItemsUnknownList(t *testing.T) {
	ledger := &fakeLedger{itemsErr: repository.ErrNotFound}
	srv := buildTestServer(t, ledger, nil, nil)

	rec := doRequest(srv, http.MethodGet, "/lists/42/items", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleSearchRequiresQuery(t *testing.T) {
	srv := buildTestServer(t, nil, nil, nil)
	rec := doRequest(srv, http.MethodGet, "/catalog/search", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSearchPassesQuery(t *testing.T) {
	gateway := &fakeCatalog{page: &domain.Page{Page: 1}}
	srv := buildTestServer(t, nil, gateway, nil)

	rec := doRequest(srv, http.MethodGet, "/catalog/search?q=matrix&page=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gateway.lastQuery != "matrix" || gateway.lastPage != 3 {
		t.Fatalf("gateway saw query=%q page=%d", gateway.lastQuery, gateway.lastPage)
	}
}

func TestHandleGetTopRated(t *testing.T) {
	gateway := &fakeCatalog{page: &domain.Page{Page: 2}}
	srv := buildTestServer(t, nil, gateway, nil)

	rec := doRequest(srv, http.MethodGet, "/catalog/top-rated?page=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gateway.lastPage != 2 {
		t.Fatalf("gateway saw page=%d, want 2", gateway.lastPage)
	}
}

func TestHandleGetPopularInvalidPage(t *testing.T) {
	srv := buildTestServer(t, nil, nil, nil)
	rec := doRequest(srv, http.MethodGet, "/catalog/popular?page=0", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGetPopularUpstreamFailure(t *testing.T) {
	gateway := &fakeCatalog{err: &fetch.UpstreamError{StatusCode: 503}}
	srv := buildTestServer(t, nil, gateway, nil)

	rec := doRequest(srv, http.MethodGet, "/catalog/popular", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestHandleMovieDetailsNotFound(t *testing.T) {
	gateway := &fakeCatalog{err: &fetch.UpstreamError{StatusCode: http.StatusNotFound}}
	srv := buildTestServer(t, nil, gateway, nil)

	rec := doRequest(srv, http.MethodGet, "/catalog/movies/999999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleListRecords(t *testing.T) {
	date := "1999-03-31"
	records := &fakeRecords{records: []domain.MovieRecord{
		{TMDBID: 603, MediaType: domain.MediaTypeMovie, Title: "The Matrix", ReleaseDate: &date},
	}}
	srv := buildTestServer(t, nil, nil, records)

	rec := doRequest(srv, http.MethodGet, "/movies", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var items []movieRecordResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 || items[0].TMDBID != 603 || items[0].Title != "The Matrix" {
		t.Fatalf("items = %+v", items)
	}
}
