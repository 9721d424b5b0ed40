// Package resolver implements the cache-aside read path for movie records:
// serve from the local store when present, otherwise fetch from the upstream
// catalog, persist, and return.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/projectapp/movies-api/internal/domain"
	"github.com/projectapp/movies-api/internal/repository"
)

// RecordStore is the slice of the movie record store the resolver needs.
type RecordStore interface {
	Get(ctx context.Context, tmdbID int, mediaType domain.MediaType) (domain.MovieRecord, error)
	Upsert(ctx context.Context, record domain.MovieRecord) error
}

// RecordFetcher is the single-item miss path of the catalog gateway.
type RecordFetcher interface {
	GetByID(ctx context.Context, id int, mediaType domain.MediaType) (domain.MovieRecord, error)
}

// Resolver answers record lookups store-first. Cached records are treated as
// immutable; there is no TTL and no revalidation.
type Resolver struct {
	store   RecordStore
	gateway RecordFetcher
	group   singleflight.Group
	logger  *log.Logger
}

// New constructs a Resolver.
func New(store RecordStore, gateway RecordFetcher, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{store: store, gateway: gateway, logger: logger}
}

// Resolve returns the record for (tmdbID, mediaType). A store hit returns
// immediately with no network call. On a miss the upstream fetch and the
// store write are collapsed per identity, so concurrent first lookups of the
// same item share one upstream call. Fetch failures leave no trace in the
// store; the next call retries.
func (r *Resolver) Resolve(ctx context.Context, tmdbID int, mediaType domain.MediaType) (domain.MovieRecord, error) {
	record, err := r.store.Get(ctx, tmdbID, mediaType)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.MovieRecord{}, fmt.Errorf("lookup %d/%s: %w", tmdbID, mediaType, err)
	}

	key := fmt.Sprintf("%s:%d", mediaType, tmdbID)
	v, err, shared := r.group.Do(key, func() (interface{}, error) {
		fetched, err := r.gateway.GetByID(ctx, tmdbID, mediaType)
		if err != nil {
			return nil, err
		}
		// The unique constraint on (id_tmdb, media_type) absorbs the
		// losing writer if two distinct keys race past the group.
		if err := r.store.Upsert(ctx, fetched); err != nil {
			return nil, err
		}
		return fetched, nil
	})
	if err != nil {
		return domain.MovieRecord{}, err
	}
	if shared {
		r.logger.Printf("resolver: collapsed concurrent fetch for %s", key)
	}
	return v.(domain.MovieRecord), nil
}
