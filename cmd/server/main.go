package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/projectapp/movies-api/internal/catalog"
	"github.com/projectapp/movies-api/internal/config"
	"github.com/projectapp/movies-api/internal/fetch"
	httpserver "github.com/projectapp/movies-api/internal/http"
	"github.com/projectapp/movies-api/internal/ledger"
	"github.com/projectapp/movies-api/internal/repository"
	"github.com/projectapp/movies-api/internal/resolver"
	"github.com/projectapp/movies-api/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[movies-api] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	fetcher := fetch.NewClient(fetch.Options{
		MaxAttempts:  uint(cfg.FetchMaxAttempts),
		InitialDelay: time.Duration(cfg.FetchInitialDelayMS) * time.Millisecond,
		Multiplier:   cfg.FetchMultiplier,
		Timeout:      time.Duration(cfg.CatalogTimeoutSecs) * time.Second,
		Logger:       logger,
	})

	gateway, err := catalog.NewClient(cfg.CatalogURL, cfg.CatalogAPIKey, cfg.CatalogLanguage, fetcher, logger)
	if err != nil {
		log.Fatalf("init catalog client: %v", err)
	}

	repo := repository.New(st)
	res := resolver.New(repo.Movies, gateway, logger)
	led := ledger.New(res, repo.Favorites, repo.Lists, logger)

	server := httpserver.New(cfg, st, repo.Movies, gateway, led, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
