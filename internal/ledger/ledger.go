// Package ledger orchestrates favorite and list writes. Every write resolves
// the referenced movie record first, so a recorded favorite or list item
// always points at a record present in the store.
package ledger

import (
	"context"
	"fmt"
	"log"

	"github.com/projectapp/movies-api/internal/domain"
)

// Resolver guarantees a movie record exists before a reference to it is
// written.
type Resolver interface {
	Resolve(ctx context.Context, tmdbID int, mediaType domain.MediaType) (domain.MovieRecord, error)
}

// FavoritesStore is the persistence slice for favorites.
type FavoritesStore interface {
	Add(ctx context.Context, userID int64, tmdbID int, mediaType domain.MediaType) (bool, error)
	Remove(ctx context.Context, userID int64, tmdbID int) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.FavoriteItem, error)
}

// ListsStore is the persistence slice for lists and their items.
type ListsStore interface {
	Create(ctx context.Context, userID int64, name string) (int64, error)
	Get(ctx context.Context, listID int64) (domain.List, error)
	AddItem(ctx context.Context, listID int64, tmdbID int, mediaType domain.MediaType) (bool, error)
	Items(ctx context.Context, listID int64) ([]domain.FavoriteItem, error)
}

// Ledger is the favorites and lists service.
type Ledger struct {
	resolver  Resolver
	favorites FavoritesStore
	lists     ListsStore
	logger    *log.Logger
}

// New constructs a Ledger.
func New(resolver Resolver, favorites FavoritesStore, lists ListsStore, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.Default()
	}
	return &Ledger{resolver: resolver, favorites: favorites, lists: lists, logger: logger}
}

// AddFavorite resolves the record, then inserts the favorite idempotently.
// The two steps are sequential, not transactional: a failed insert after a
// successful resolve leaves the record cached, which is safe because records
// have no owner.
func (l *Ledger) AddFavorite(ctx context.Context, userID int64, tmdbID int, mediaType domain.MediaType) error {
	if _, err := l.resolver.Resolve(ctx, tmdbID, mediaType); err != nil {
		return fmt.Errorf("resolve %d/%s: %w", tmdbID, mediaType, err)
	}

	inserted, err := l.favorites.Add(ctx, userID, tmdbID, mediaType)
	if err != nil {
		return err
	}
	if !inserted {
		l.logger.Printf("ledger: favorite %d/%d already present", userID, tmdbID)
	}
	return nil
}

// RemoveFavorite deletes the favorite. Removal is idempotent and never
// touches the record store or the network; the cached record stays, since
// another user may favorite the same movie.
func (l *Ledger) RemoveFavorite(ctx context.Context, userID int64, tmdbID int) error {
	removed, err := l.favorites.Remove(ctx, userID, tmdbID)
	if err != nil {
		return err
	}
	if !removed {
		l.logger.Printf("ledger: favorite %d/%d was not present", userID, tmdbID)
	}
	return nil
}

// ListFavorites returns the user's favorites, most recently added first.
func (l *Ledger) ListFavorites(ctx context.Context, userID int64) ([]domain.FavoriteItem, error) {
	return l.favorites.ListByUser(ctx, userID)
}

// CreateList creates a named list owned by the user and returns its id.
func (l *Ledger) CreateList(ctx context.Context, userID int64, name string) (int64, error) {
	return l.lists.Create(ctx, userID, name)
}

// AddListItem resolves the record, then appends it to the list idempotently.
// The list must already exist.
func (l *Ledger) AddListItem(ctx context.Context, listID int64, tmdbID int, mediaType domain.MediaType) error {
	if _, err := l.lists.Get(ctx, listID); err != nil {
		return err
	}
	if _, err := l.resolver.Resolve(ctx, tmdbID, mediaType); err != nil {
		return fmt.Errorf("resolve %d/%s: %w", tmdbID, mediaType, err)
	}

	inserted, err := l.lists.AddItem(ctx, listID, tmdbID, mediaType)
	if err != nil {
		return err
	}
	if !inserted {
		l.logger.Printf("ledger: item %d already in list %d", tmdbID, listID)
	}
	return nil
}

// ListItems returns a list's items in insertion order.
func (l *Ledger) ListItems(ctx context.Context, listID int64) ([]domain.FavoriteItem, error) {
	if _, err := l.lists.Get(ctx, listID); err != nil {
		return nil, err
	}
	return l.lists.Items(ctx, listID)
}
