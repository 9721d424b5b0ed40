// Package catalog is a stateless typed accessor over the upstream movie
// catalog API. It owns URL construction, payload decoding, and field
// normalization; retries belong to the fetch client underneath.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/projectapp/movies-api/internal/domain"
	"github.com/projectapp/movies-api/internal/fetch"
)

const imageBaseURL = "https://image.tmdb.org/t/p"

// Gateway defines the catalog operations consumed by the resolver and the
// HTTP layer.
type Gateway interface {
	GetPopular(ctx context.Context, page int) (*domain.Page, error)
	GetTopRated(ctx context.Context, page int) (*domain.Page, error)
	Search(ctx context.Context, query string, page int) (*domain.Page, error)
	GetDetails(ctx context.Context, id int) (*domain.MovieDetails, error)
	GetByID(ctx context.Context, id int, mediaType domain.MediaType) (domain.MovieRecord, error)
}

// Client implements Gateway over the retrying fetch client.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	fetcher  *fetch.Client
	logger   *log.Logger
}

// NewClient constructs a catalog gateway.
func NewClient(baseURL, apiKey, language string, fetcher *fetch.Client, logger *log.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("catalog base URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("catalog API key is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		language: language,
		fetcher:  fetcher,
		logger:   logger,
	}, nil
}

// GetPopular returns one page of the catalog's popular movies.
func (c *Client) GetPopular(ctx context.Context, page int) (*domain.Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var envelope pageEnvelope
	if err := c.fetcher.GetJSON(ctx, c.endpoint("/movie/popular", params), &envelope); err != nil {
		return nil, err
	}
	return envelope.toPage(domain.MediaTypeMovie), nil
}

// GetTopRated returns one page of the catalog's top rated movies.
func (c *Client) GetTopRated(ctx context.Context, page int) (*domain.Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var envelope pageEnvelope
	if err := c.fetcher.GetJSON(ctx, c.endpoint("/movie/top_rated", params), &envelope); err != nil {
		return nil, err
	}
	return envelope.toPage(domain.MediaTypeMovie), nil
}

// Search runs a server-side title search. Query constraints (debouncing,
// minimum length) are the caller's concern.
func (c *Client) Search(ctx context.Context, query string, page int) (*domain.Page, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	var envelope pageEnvelope
	if err := c.fetcher.GetJSON(ctx, c.endpoint("/search/movie", params), &envelope); err != nil {
		return nil, err
	}
	return envelope.toPage(domain.MediaTypeMovie), nil
}

// GetDetails fetches the details and credits endpoints concurrently and
// merges them. Either failure fails the whole call.
func (c *Client) GetDetails(ctx context.Context, id int) (*domain.MovieDetails, error) {
	var (
		details detailsPayload
		credits creditsPayload
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.fetcher.GetJSON(gctx, c.endpoint(fmt.Sprintf("/movie/%d", id), nil), &details)
	})
	g.Go(func() error {
		return c.fetcher.GetJSON(gctx, c.endpoint(fmt.Sprintf("/movie/%d/credits", id), nil), &credits)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &domain.MovieDetails{
		MovieSummary: details.toSummary(domain.MediaTypeMovie),
		Runtime:      details.Runtime,
		Tagline:      details.Tagline,
		Genres:       details.Genres,
		Cast:         credits.Cast,
	}
	return merged, nil
}

// GetByID fetches a single catalog item. This is the cache-miss path of the
// resolver; browsing never goes through here.
func (c *Client) GetByID(ctx context.Context, id int, mediaType domain.MediaType) (domain.MovieRecord, error) {
	path := fmt.Sprintf("/%s/%d", mediaType, id)

	var payload itemPayload
	if err := c.fetcher.GetJSON(ctx, c.endpoint(path, nil), &payload); err != nil {
		return domain.MovieRecord{}, err
	}
	return payload.toRecord(mediaType), nil
}

// GetPosterURL builds a CDN image URL for a poster path. Empty paths yield
// an empty URL; the UI renders its own placeholder.
func GetPosterURL(posterPath, size string) string {
	if posterPath == "" {
		return ""
	}
	if size == "" {
		size = "w500"
	}
	return fmt.Sprintf("%s/%s%s", imageBaseURL, size, posterPath)
}

// IsNotFound reports whether err is an upstream 404 that survived retries.
func IsNotFound(err error) bool {
	var upstream *fetch.UpstreamError
	return errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound
}

func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	return c.baseURL + path + "?" + params.Encode()
}
