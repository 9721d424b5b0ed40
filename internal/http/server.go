package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/projectapp/movies-api/internal/catalog"
	"github.com/projectapp/movies-api/internal/config"
	"github.com/projectapp/movies-api/internal/domain"
	"github.com/projectapp/movies-api/internal/store"
)

// LedgerService is the favorites and lists surface exposed over HTTP.
type LedgerService interface {
	AddFavorite(ctx context.Context, userID int64, tmdbID int, mediaType domain.MediaType) error
	RemoveFavorite(ctx context.Context, userID int64, tmdbID int) error
	ListFavorites(ctx context.Context, userID int64) ([]domain.FavoriteItem, error)
	CreateList(ctx context.Context, userID int64, name string) (int64, error)
	AddListItem(ctx context.Context, listID int64, tmdbID int, mediaType domain.MediaType) error
	ListItems(ctx context.Context, listID int64) ([]domain.FavoriteItem, error)
}

// RecordLister exposes the cached movie record inventory.
type RecordLister interface {
	ListAll(ctx context.Context) ([]domain.MovieRecord, error)
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg     config.Config
	store   *store.Store
	records RecordLister
	catalog catalog.Gateway
	ledger  LedgerService
	logger  *log.Logger
	router  chi.Router
	httpSrv *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, records RecordLister, gateway catalog.Gateway, ledger LedgerService, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:     cfg,
		store:   st,
		records: records,
		catalog: gateway,
		ledger:  ledger,
		logger:  logger,
		router:  r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/catalog", func(r chi.Router) {
		r.Get("/popular", s.handleGetPopular)
		r.Get("/top-rated", s.handleGetTopRated)
		r.Get("/search", s.handleSearch)
		r.Get("/movies/{id}", s.handleMovieDetails)
	})

	s.router.Get("/movies", s.handleListRecords)

	s.router.Route("/favorites", func(r chi.Router) {
		r.Post("/", s.handleAddFavorite)
		r.Get("/{userID}", s.handleListFavorites)
		r.Delete("/{userID}/{movieID}", s.handleRemoveFavorite)
	})

	s.router.Route("/lists", func(r chi.Router) {
		r.Post("/", s.handleCreateList)
		r.Route("/{listID}", func(r chi.Router) {
			r.Post("/items", s.handleAddListItem)
			r.Get("/items", s.handleListItems)
		})
	})
}

// Start boots the HTTP server and blocks until it stops or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
