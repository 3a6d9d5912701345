// Command rateloader imports a seed document (reference entities and nightly
// rates) into MySQL.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_rates/internal/adapters/observability"
	"hotel_rates/internal/app"
	"hotel_rates/internal/shared"
	"hotel_rates/internal/storage/memory"
	mysqlrepo "hotel_rates/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()
	file := flag.String("file", cfg.SeedFile, "seed JSON document")
	flag.Parse()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.SetLevel(cfg.LogLevel)

	if *file == "" {
		log.Fatal().Msg("no seed file: pass -file or set SEED_FILE")
	}
	seed, err := readSeed(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("read seed failed")
	}
	if err := seed.ValidateReference(); err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("invalid reference data")
	}
	log.Info().
		Str("file", *file).
		Int("workers", cfg.ImportWorkers).
		Int("batch", cfg.ImportBatch).
		Int("rates", len(seed.Rates)).
		Msg("rate loader starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	// reference entities first; rates and seasons point at them
	for _, h := range seed.Hotels {
		must(repo.SaveHotel(ctx, h), "hotel", h.ID)
	}
	for _, rt := range seed.RoomTypes {
		must(repo.SaveRoomType(ctx, rt), "room type", rt.ID)
	}
	for _, m := range seed.Markets {
		must(repo.SaveMarket(ctx, m), "market", m.ID)
	}
	for _, s := range seed.Seasons {
		must(repo.SaveSeason(ctx, s), "season", s.ID)
	}
	for _, c := range seed.Campaigns {
		must(repo.SaveCampaign(ctx, c), "campaign", c.ID)
	}

	imp := app.NewRateImportService(repo, repo, cfg.ImportBatch)
	sem := semaphore.NewWeighted(int64(max(cfg.ImportWorkers, 1)))
	var wg sync.WaitGroup
	var imported, rejected atomic.Int64

	chunk := max(cfg.ImportBatch, 1)
	for start := 0; start < len(seed.Rates); start += chunk {
		part := seed.Rates[start:min(start+chunk, len(seed.Rates))]

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			defer sem.Release(1)

			rep, err := imp.Import(ctx, part)
			if err != nil {
				log.Warn().Int("offset", offset).Err(err).Msg("chunk import failed")
				return
			}
			imported.Add(int64(rep.Imported))
			rejected.Add(int64(len(rep.Rejected)))
			for _, r := range rep.Rejected {
				log.Warn().Int("index", offset+r.Index).Str("reason", r.Reason).Msg("rate rejected")
			}
			log.Info().Int("offset", offset).Int("imported", rep.Imported).Msg("chunk ok")
		}(start)
	}

	wg.Wait()
	log.Info().Int64("imported", imported.Load()).Int64("rejected", rejected.Load()).Msg("rate load completed")
}

func readSeed(path string) (*memory.Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return memory.DecodeSeed(f)
}

func must(err error, what string, id int64) {
	if err != nil {
		log.Fatal().Err(err).Str("entity", what).Int64("id", id).Msg("save failed")
	}
}
