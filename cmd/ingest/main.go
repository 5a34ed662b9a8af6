package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playrank/playrank/internal/config"
	"github.com/playrank/playrank/internal/dataset"
	"github.com/playrank/playrank/internal/ingest"
	"github.com/playrank/playrank/internal/repository"
	"github.com/playrank/playrank/internal/store"
)

// fileFetcher pages through a local JSON dump instead of the live API.
type fileFetcher struct {
	rows []dataset.GameRow
}

func (f *fileFetcher) FetchPage(_ context.Context, offset, length int) (dataset.PageResponse, error) {
	page := dataset.PageResponse{NumRowsTotal: len(f.rows)}
	end := offset + length
	if end > len(f.rows) {
		end = len(f.rows)
	}
	for i := offset; i < end; i++ {
		page.Rows = append(page.Rows, dataset.RowEnvelope{RowIdx: i, Row: f.rows[i]})
	}
	return page, nil
}

func main() {
	var (
		datasetURL = flag.String("dataset-url", "", "override the dataset API base URL")
		dumpFile   = flag.String("file", "", "ingest a local JSON dump instead of the live API")
		maxRows    = flag.Int("max-rows", 0, "stop after this many rows (0 = full dataset)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if *datasetURL != "" {
		cfg.DatasetURL = *datasetURL
	}

	logger := log.New(os.Stdout, "[playrank-ingest] ", log.LstdFlags)

	if err := store.Migrate(cfg.DBURL, cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := store.Open(dbCtx, cfg.DBURL, store.Options{
		MaxConns:    int32(cfg.DBMaxConns),
		MinConns:    int32(cfg.DBMinConns),
		ConnTimeout: time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	var fetcher ingest.PageFetcher
	if *dumpFile != "" {
		payload, err := os.ReadFile(*dumpFile)
		if err != nil {
			log.Fatalf("read dump: %v", err)
		}
		var rows []dataset.GameRow
		if err := json.Unmarshal(payload, &rows); err != nil {
			log.Fatalf("parse dump: %v", err)
		}
		logger.Printf("ingesting %d rows from %s", len(rows), *dumpFile)
		fetcher = &fileFetcher{rows: rows}
	} else {
		fetcher = dataset.NewClient(cfg.DatasetURL, time.Duration(cfg.DatasetTimeoutSecs)*time.Second, logger)
	}

	svc := ingest.NewService(fetcher, repository.New(st), ingest.Options{
		PageSize:           cfg.IngestPageSize,
		Workers:            cfg.IngestWorkers,
		MinRecommendations: cfg.LadderMinRecommendations,
		MaxRows:            *maxRows,
	}, logger)

	stats, err := svc.Run(ctx)
	if err != nil {
		log.Fatalf("ingestion failed: %v (fetched=%d stored=%d)", err, stats.Fetched, stats.Stored)
	}
}
