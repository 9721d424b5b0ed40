package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectapp/movies-api/internal/domain"
)

// MoviesRepository is the durable movie record store. Records are keyed by
// (id_tmdb, media_type) and written at most once.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id_tmdb,
    media_type,
    title,
    overview,
    poster_path,
    release_date,
    created_at
`

// Get fetches a cached record by identity, returning ErrNotFound on a miss.
func (r *MoviesRepository) Get(ctx context.Context, tmdbID int, mediaType domain.MediaType) (domain.MovieRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id_tmdb = $1 AND media_type = $2`, movieColumns)
	row := r.pool.QueryRow(ctx, query, tmdbID, string(mediaType))
	record, err := scanMovieRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.MovieRecord{}, ErrNotFound
		}
		return domain.MovieRecord{}, err
	}
	return record, nil
}

// Upsert inserts a record if its identity is absent. Existing rows are never
// overwritten; a losing concurrent writer is silently absorbed.
func (r *MoviesRepository) Upsert(ctx context.Context, record domain.MovieRecord) error {
	const query = `
        INSERT INTO movies (id_tmdb, media_type, title, overview, poster_path, release_date)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (id_tmdb, media_type) DO NOTHING
    `
	_, err := r.pool.Exec(ctx, query,
		record.TMDBID,
		string(record.MediaType),
		record.Title,
		record.Overview,
		record.PosterPath,
		record.ReleaseDate,
	)
	if err != nil {
		return fmt.Errorf("upsert movie %d/%s: %w", record.TMDBID, record.MediaType, err)
	}
	return nil
}

// ListAll returns every cached record, newest release first. Records without
// a release date sort last.
func (r *MoviesRepository) ListAll(ctx context.Context) ([]domain.MovieRecord, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM movies
        ORDER BY release_date DESC NULLS LAST, id_tmdb DESC
    `, movieColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.MovieRecord, 0)
	for rows.Next() {
		record, err := scanMovieRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func scanMovieRecord(row pgx.Row) (domain.MovieRecord, error) {
	var (
		record    domain.MovieRecord
		mediaType string
	)
	err := row.Scan(
		&record.TMDBID,
		&mediaType,
		&record.Title,
		&record.Overview,
		&record.PosterPath,
		&record.ReleaseDate,
		&record.CreatedAt,
	)
	if err != nil {
		return domain.MovieRecord{}, err
	}
	record.MediaType = domain.MediaType(mediaType)
	return record, nil
}
