// Package scan runs scan criteria across platform adapters and records the scan lifecycle.
package scan

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/jimezsa/atsscan/internal/models"
	"github.com/jimezsa/atsscan/internal/scraper"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many platforms are scanned at once.
const DefaultConcurrency = 4

var errAdapterPanic = errors.New("adapter panicked")

// Report summarizes one platform's part of a scan.
type Report struct {
	Platform string
	Count    int
	Stub     bool
	Skipped  bool
	Err      error
	Elapsed  time.Duration
}

type Orchestrator struct {
	registry    *scraper.Registry
	logger      zerolog.Logger
	concurrency int
}

func NewOrchestrator(registry *scraper.Registry, logger zerolog.Logger, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		registry:    registry,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Run scans every requested platform and returns the accepted postings in platform order.
// Adapter failures never fail the scan; a cancelled ctx yields whatever was collected.
func (o *Orchestrator) Run(ctx context.Context, criteria models.Criteria) ([]models.Posting, error) {
	postings, _, err := o.RunReport(ctx, criteria)
	return postings, err
}

// RunReport is Run with a per-platform report, in the same order as criteria.Platforms. Blank
// platform entries are dropped.
func (o *Orchestrator) RunReport(ctx context.Context, criteria models.Criteria) ([]models.Posting, []Report, error) {
	if err := criteria.Validate(); err != nil {
		return nil, nil, err
	}

	platforms := requestedPlatforms(criteria.Platforms)
	results := make([][]models.Posting, len(platforms))
	reports := make([]Report, len(platforms))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, platform := range platforms {
		reports[i].Platform = platform

		adapter, stub := o.resolve(platform)
		if adapter == nil {
			reports[i].Skipped = true
			o.logger.Warn().Str("platform", platform).Msg("no adapter for platform; skipped")
			continue
		}
		reports[i].Stub = stub

		g.Go(func() error {
			// Platforms still queued behind the limit when ctx ends are not started.
			if err := ctx.Err(); err != nil {
				reports[i].Err = err
				o.logger.Warn().Str("platform", platform).Err(err).Msg("scan deadline reached; platform not started")
				return nil
			}
			start := time.Now()
			postings, err := o.fetch(ctx, adapter, criteria)
			results[i] = postings
			reports[i].Count = len(postings)
			reports[i].Err = err
			reports[i].Elapsed = time.Since(start)

			event := o.logger.Info()
			if err != nil {
				event = o.logger.Warn().Err(err)
			}
			event.Str("platform", platform).
				Int("postings", len(postings)).
				Bool("stub", stub).
				Dur("elapsed", reports[i].Elapsed).
				Msg("platform scanned")
			return nil
		})
	}
	_ = g.Wait()

	var all []models.Posting
	for _, postings := range results {
		all = append(all, postings...)
	}
	return all, reports, nil
}

func requestedPlatforms(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

func (o *Orchestrator) resolve(platform string) (scraper.Adapter, bool) {
	if o.registry != nil {
		if adapter, ok := o.registry.Resolve(platform); ok {
			return adapter, false
		}
		if !o.registry.StubFallback() {
			return nil, false
		}
	}
	return scraper.NewStub(platform), true
}

func (o *Orchestrator) fetch(ctx context.Context, adapter scraper.Adapter, criteria models.Criteria) (postings []models.Posting, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Str("platform", adapter.Name()).Bytes("stack", debug.Stack()).Msgf("panic: %v", r)
			postings, err = nil, fmt.Errorf("%w: %v", errAdapterPanic, r)
		}
	}()
	return adapter.Fetch(ctx, criteria)
}
