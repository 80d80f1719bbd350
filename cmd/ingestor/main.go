package main

import (
	"context"
	"database/sql"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"appraiser_directory/internal/adapters/observability"
	redisad "appraiser_directory/internal/adapters/redis"
	"appraiser_directory/internal/app"
	"appraiser_directory/internal/shared"
	"appraiser_directory/internal/storage/jsonstore"
	mysqlrepo "appraiser_directory/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	store, err := jsonstore.Open(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("data_dir", cfg.DataDir).Msg("load data store failed")
	}
	log.Info().
		Int("locations", len(store.Locations())).
		Int("workers", cfg.Workers).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	ing := app.NewIngestionService(repo, cache)

	sem := semaphore.NewWeighted(int64(max(cfg.Workers, 1)))
	var wg sync.WaitGroup
	var failed atomic.Int32

	for _, loc := range store.Locations() {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("ingestion interrupted")
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			if err := ing.IngestLocation(ctx, loc); err != nil {
				failed.Add(1)
				log.Warn().Str("location", loc.Key).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("location", loc.Key).Int("appraisers", len(loc.Appraisers)).Msg("ingest ok")
		}()
	}

	wg.Wait()
	log.Info().Int32("failed", failed.Load()).Msg("ingestion completed")
}
