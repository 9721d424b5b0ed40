package domain

import "time"

// FavoriteEntry records that a user marked a catalog item as favorite.
// Identity is (UserID, TMDBID); inserts are idempotent.
type FavoriteEntry struct {
	UserID    int64
	TMDBID    int
	MediaType MediaType
	CreatedAt time.Time
}

// FavoriteItem is a favorite or list item joined against the movie record
// store for display. Title and PosterPath are nil when the referenced record
// is missing, which only happens after out-of-band data loss.
type FavoriteItem struct {
	TMDBID     int
	MediaType  MediaType
	Title      *string
	PosterPath *string
	AddedAt    time.Time
}

// List is a named, user-owned collection of catalog items.
type List struct {
	ID        int64
	UserID    int64
	Name      string
	CreatedAt time.Time
}

// ListItem ties one catalog item to a list. Identity is (ListID, TMDBID).
type ListItem struct {
	ListID    int64
	TMDBID    int
	MediaType MediaType
	CreatedAt time.Time
}
