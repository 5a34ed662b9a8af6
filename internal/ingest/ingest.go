// Package ingest loads the upstream catalog into the database and admits
// popular titles to the comparison ladder.
package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/playrank/playrank/internal/dataset"
	"github.com/playrank/playrank/internal/repository"
)

// developerNamespace seeds deterministic developer ids: the same studio name
// always maps to the same UUID, so re-ingesting never duplicates studios.
var developerNamespace = uuid.MustParse("1b671a64-40d5-491e-99b0-da01ff1f3341")

// PageFetcher is the slice of the dataset client the ingester needs.
type PageFetcher interface {
	FetchPage(ctx context.Context, offset, length int) (dataset.PageResponse, error)
}

// Options tunes an ingestion run.
type Options struct {
	PageSize int
	Workers  int
	// MinRecommendations is the popularity floor for ladder admission.
	MinRecommendations int
	// MaxRows, when positive, stops the run early. Used for smoke runs.
	MaxRows int
}

// Stats summarises one ingestion run.
type Stats struct {
	Fetched  int64
	Stored   int64
	Admitted int64
	Skipped  int64
}

// Service drives the fetch-validate-store pipeline.
type Service struct {
	client PageFetcher
	repo   *repository.Repository
	opts   Options
	logger *log.Logger
}

// NewService wires an ingestion service.
func NewService(client PageFetcher, repo *repository.Repository, opts Options, logger *log.Logger) *Service {
	if opts.PageSize < 1 || opts.PageSize > 100 {
		opts.PageSize = 100
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{client: client, repo: repo, opts: opts, logger: logger}
}

// Run pages through the dataset until a short page signals the end, handing
// each row to the worker pool. Invalid rows are logged and skipped; a failed
// page fetch aborts the run.
func (s *Service) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	pool := NewWorkerPool(ctx, s.opts.Workers, s.logger)
	pool.Start()
	defer pool.Shutdown()

	start := time.Now()
	for offset := 0; ; offset += s.opts.PageSize {
		page, err := s.client.FetchPage(ctx, offset, s.opts.PageSize)
		if err != nil {
			pool.Wait()
			return stats, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}

		for _, envelope := range page.Rows {
			row := envelope.Row
			atomic.AddInt64(&stats.Fetched, 1)
			pool.Submit(func(taskCtx context.Context) error {
				if err := s.processRow(taskCtx, row, &stats); err != nil {
					atomic.AddInt64(&stats.Skipped, 1)
					return err
				}
				return nil
			})
		}

		done := len(page.Rows) < s.opts.PageSize
		if s.opts.MaxRows > 0 && atomic.LoadInt64(&stats.Fetched) >= int64(s.opts.MaxRows) {
			done = true
		}
		if done {
			break
		}
	}

	pool.Wait()
	s.logger.Printf("ingest: run complete in %s (fetched=%d stored=%d admitted=%d skipped=%d)",
		time.Since(start).Round(time.Millisecond),
		atomic.LoadInt64(&stats.Fetched), atomic.LoadInt64(&stats.Stored),
		atomic.LoadInt64(&stats.Admitted), atomic.LoadInt64(&stats.Skipped))
	return stats, nil
}

func (s *Service) processRow(ctx context.Context, row dataset.GameRow, stats *Stats) error {
	params, err := buildUpsertParams(row)
	if err != nil {
		return fmt.Errorf("row %q: %w", row.Name, err)
	}

	game, err := s.repo.Games.Upsert(ctx, params)
	if err != nil {
		return fmt.Errorf("store %q: %w", params.Name, err)
	}
	atomic.AddInt64(&stats.Stored, 1)

	for _, name := range splitDevelopers(row.Developers) {
		devID := developerID(name)
		if err := s.repo.Games.UpsertDeveloper(ctx, devID, strings.TrimSpace(name)); err != nil {
			return fmt.Errorf("store developer %q: %w", name, err)
		}
		if err := s.repo.Games.LinkDeveloper(ctx, game.ID, devID); err != nil {
			return fmt.Errorf("link developer %q: %w", name, err)
		}
	}

	if row.Recommendations >= s.opts.MinRecommendations {
		if err := s.repo.Rankings.Admit(ctx, game.ID); err != nil {
			return fmt.Errorf("admit %q: %w", params.Name, err)
		}
		atomic.AddInt64(&stats.Admitted, 1)
	}
	return nil
}

// buildUpsertParams validates a raw row and shapes it for storage.
func buildUpsertParams(row dataset.GameRow) (repository.GameUpsertParams, error) {
	appID, err := row.AppID.Int64()
	if err != nil || appID <= 0 {
		return repository.GameUpsertParams{}, fmt.Errorf("invalid app id %q", row.AppID)
	}
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return repository.GameUpsertParams{}, fmt.Errorf("empty name")
	}
	if row.Price < 0 {
		return repository.GameUpsertParams{}, fmt.Errorf("negative price %v", row.Price)
	}

	params := repository.GameUpsertParams{
		AppID: appID,
		Name:  name,
	}

	price := row.Price
	params.Price = &price

	// Zero means unreviewed in the source data, not a zero score.
	if row.MetacriticScore > 0 && row.MetacriticScore <= 100 {
		score := row.MetacriticScore
		params.Score = &score
	} else if row.MetacriticScore > 100 {
		return repository.GameUpsertParams{}, fmt.Errorf("score %d out of range", row.MetacriticScore)
	}

	if total := row.Positive + row.Negative; total > 0 {
		sentiment := float64(row.Positive) / float64(total)
		params.Sentiment = &sentiment
	}

	if t, ok := parseReleaseDate(row.ReleaseDate); ok {
		params.ReleaseDate = &t
	}
	if v := strings.TrimSpace(row.Genres); v != "" {
		params.Genres = &v
	}
	if v := strings.TrimSpace(row.Developers); v != "" {
		params.Developers = &v
	}
	if v := strings.TrimSpace(row.Publishers); v != "" {
		params.Publishers = &v
	}
	if v := strings.TrimSpace(row.About); v != "" {
		params.Description = &v
	}
	if v := strings.TrimSpace(row.HeaderImage); v != "" {
		params.HeaderImage = &v
	}
	return params, nil
}

// parseReleaseDate accepts the two date shapes the dataset uses.
func parseReleaseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"Jan 2, 2006", "Jan 2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func splitDevelopers(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// canonicalDeveloper normalises a studio name so spelling variants collapse
// to one identity: NFC form, trimmed, lowercased.
func canonicalDeveloper(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
}

// developerID derives the stable UUID for a studio name.
func developerID(name string) string {
	return uuid.NewSHA1(developerNamespace, []byte(canonicalDeveloper(name))).String()
}
