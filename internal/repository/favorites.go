package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectapp/movies-api/internal/domain"
)

// FavoritesRepository persists the per-user favorites set. Identity is
// (user_id, id_tmdb); inserts are idempotent.
type FavoritesRepository struct {
	pool *pgxpool.Pool
}

// Add records a favorite, ignoring duplicates. The returned flag reports
// whether a new row was written.
func (r *FavoritesRepository) Add(ctx context.Context, userID int64, tmdbID int, mediaType domain.MediaType) (bool, error) {
	const query = `
        INSERT INTO favorites (user_id, id_tmdb, media_type)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id, id_tmdb) DO NOTHING
    `
	tag, err := r.pool.Exec(ctx, query, userID, tmdbID, string(mediaType))
	if err != nil {
		return false, fmt.Errorf("add favorite %d/%d: %w", userID, tmdbID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Remove deletes a favorite. Removing an absent favorite is not an error;
// the returned flag reports whether a row was actually deleted.
func (r *FavoritesRepository) Remove(ctx context.Context, userID int64, tmdbID int) (bool, error) {
	const query = `DELETE FROM favorites WHERE user_id = $1 AND id_tmdb = $2`
	tag, err := r.pool.Exec(ctx, query, userID, tmdbID)
	if err != nil {
		return false, fmt.Errorf("remove favorite %d/%d: %w", userID, tmdbID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByUser returns the user's favorites joined against the movie record
// store, most recently added first. A favorite whose record disappeared
// out-of-band is still returned, with nil display fields.
func (r *FavoritesRepository) ListByUser(ctx context.Context, userID int64) ([]domain.FavoriteItem, error) {
	const query = `
        SELECT f.id_tmdb, f.media_type, m.title, m.poster_path, f.created_at
        FROM favorites f
        LEFT JOIN movies m ON m.id_tmdb = f.id_tmdb AND m.media_type = f.media_type
        WHERE f.user_id = $1
        ORDER BY f.created_at DESC, f.id_tmdb DESC
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.FavoriteItem, 0)
	for rows.Next() {
		var (
			item      domain.FavoriteItem
			mediaType string
		)
		if err := rows.Scan(&item.TMDBID, &mediaType, &item.Title, &item.PosterPath, &item.AddedAt); err != nil {
			return nil, err
		}
		item.MediaType = domain.MediaType(mediaType)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
