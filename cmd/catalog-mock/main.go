package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

type catalogEntry struct {
	ID            int             `json:"id"`
	Title         string          `json:"title,omitempty"`
	Name          string          `json:"name,omitempty"`
	Overview      string          `json:"overview"`
	PosterPath    string          `json:"poster_path"`
	ReleaseDate   string          `json:"release_date,omitempty"`
	FirstAirDate  string          `json:"first_air_date,omitempty"`
	VoteAverage   float64         `json:"vote_average"`
	Runtime       int             `json:"runtime,omitempty"`
	Tagline       string          `json:"tagline,omitempty"`
	Genres        json.RawMessage `json:"genres,omitempty"`
	Credits       json.RawMessage `json:"credits,omitempty"`
}

type mockData struct {
	Movies []catalogEntry `json:"movies"`
	TV     []catalogEntry `json:"tv"`
}

func main() {
	var (
		port = flag.String("port", "9098", "port to listen on")
		data = flag.String("data", "mock-catalog.json", "path to mock data file")
		fail = flag.Int("fail", 0, "respond 500 to the first N requests")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var payload mockData
	if err := json.Unmarshal(file, &payload); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	movies := make(map[int]catalogEntry, len(payload.Movies))
	for _, m := range payload.Movies {
		movies[m.ID] = m
	}
	tv := make(map[int]catalogEntry, len(payload.TV))
	for _, t := range payload.TV {
		tv[t.ID] = t
	}

	var failures int64

	mux := http.NewServeMux()

	// Simulates upstream flakiness for retry testing.
	withFailures := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt64(&failures, 1) <= int64(*fail) {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next(w, r)
		}
	}

	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}

	writePage := func(w http.ResponseWriter, r *http.Request, results []catalogEntry) {
		page := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				page = n
			}
		}
		writeJSON(w, map[string]interface{}{
			"page":          page,
			"results":       results,
			"total_pages":   1,
			"total_results": len(results),
		})
	}

	mux.HandleFunc("/movie/popular", withFailures(func(w http.ResponseWriter, r *http.Request) {
		writePage(w, r, payload.Movies)
	}))

	mux.HandleFunc("/movie/top_rated", withFailures(func(w http.ResponseWriter, r *http.Request) {
		writePage(w, r, payload.Movies)
	}))

	mux.HandleFunc("/search/movie", withFailures(func(w http.ResponseWriter, r *http.Request) {
		query := strings.ToLower(r.URL.Query().Get("query"))
		matched := make([]catalogEntry, 0)
		for _, m := range payload.Movies {
			if strings.Contains(strings.ToLower(m.Title), query) {
				matched = append(matched, m)
			}
		}
		writePage(w, r, matched)
	}))

	lookup := func(entries map[int]catalogEntry, rawID string) (catalogEntry, bool) {
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return catalogEntry{}, false
		}
		entry, ok := entries[id]
		return entry, ok
	}

	mux.HandleFunc("/movie/", withFailures(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/movie/")
		if rawID, ok := strings.CutSuffix(rest, "/credits"); ok {
			entry, found := lookup(movies, rawID)
			if !found || entry.Credits == nil {
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(entry.Credits)
			return
		}
		entry, found := lookup(movies, rest)
		if !found {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		writeJSON(w, entry)
	}))

	mux.HandleFunc("/tv/", withFailures(func(w http.ResponseWriter, r *http.Request) {
		entry, found := lookup(tv, strings.TrimPrefix(r.URL.Path, "/tv/"))
		if !found {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		writeJSON(w, entry)
	}))

	addr := ":" + *port
	log.Printf("mock catalog listening on %s (%d movies, %d tv)", addr, len(movies), len(tv))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
