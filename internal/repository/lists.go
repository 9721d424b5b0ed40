package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectapp/movies-api/internal/domain"
)

// ListsRepository persists user-owned lists and their items.
type ListsRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new list and returns its id.
func (r *ListsRepository) Create(ctx context.Context, userID int64, name string) (int64, error) {
	const query = `
        INSERT INTO lists (user_id, name)
        VALUES ($1,$2)
        RETURNING id
    `
	var id int64
	if err := r.pool.QueryRow(ctx, query, userID, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("create list for user %d: %w", userID, err)
	}
	return id, nil
}

// Get fetches a list by id, returning ErrNotFound when it does not exist.
func (r *ListsRepository) Get(ctx context.Context, listID int64) (domain.List, error) {
	const query = `SELECT id, user_id, name, created_at FROM lists WHERE id = $1`
	var list domain.List
	err := r.pool.QueryRow(ctx, query, listID).Scan(&list.ID, &list.UserID, &list.Name, &list.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.List{}, ErrNotFound
		}
		return domain.List{}, err
	}
	return list, nil
}

// AddItem appends a catalog item to a list, ignoring duplicates. The
// returned flag reports whether a new row was written.
func (r *ListsRepository) AddItem(ctx context.Context, listID int64, tmdbID int, mediaType domain.MediaType) (bool, error) {
	const query = `
        INSERT INTO list_items (list_id, id_tmdb, media_type)
        VALUES ($1,$2,$3)
        ON CONFLICT (list_id, id_tmdb) DO NOTHING
    `
	tag, err := r.pool.Exec(ctx, query, listID, tmdbID, string(mediaType))
	if err != nil {
		return false, fmt.Errorf("add item %d to list %d: %w", tmdbID, listID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Items returns a list's entries joined against the movie record store, in
// insertion order.
func (r *ListsRepository) Items(ctx context.Context, listID int64) ([]domain.FavoriteItem, error) {
	const query = `
        SELECT li.id_tmdb, li.media_type, m.title, m.poster_path, li.created_at
        FROM list_items li
        LEFT JOIN movies m ON m.id_tmdb = li.id_tmdb AND m.media_type = li.media_type
        WHERE li.list_id = $1
        ORDER BY li.created_at ASC, li.id_tmdb ASC
    `
	rows, err := r.pool.Query(ctx, query, listID)
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
