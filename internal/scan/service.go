package scan

import (
	"context"
	"fmt"

	"github.com/jimezsa/atsscan/internal/models"
	"github.com/rs/zerolog"
)

// Store persists scan records and their postings.
type Store interface {
	CreateScan(ctx context.Context, criteria models.Criteria) (models.Scan, error)
	MarkProcessing(ctx context.Context, scanID string) error
	InsertPostings(ctx context.Context, scanID string, postings []models.Posting) error
	CompleteScan(ctx context.Context, scanID string, total int) error
	FailScan(ctx context.Context, scanID string, message string) error
	GetScan(ctx context.Context, scanID string) (models.Scan, error)
	ListPostings(ctx context.Context, scanID string) ([]models.Posting, error)
}

// Runner is satisfied by *Orchestrator.
type Runner interface {
	RunReport(ctx context.Context, criteria models.Criteria) ([]models.Posting, []Report, error)
}

type Result struct {
	ScanID   string
	Postings []models.Posting
	Reports  []Report
}

// Service wraps a Runner with the persisted scan lifecycle:
// pending, processing, then completed or failed.
type Service struct {
	store  Store
	runner Runner
	logger zerolog.Logger
}

func NewService(store Store, runner Runner, logger zerolog.Logger) *Service {
	return &Service{store: store, runner: runner, logger: logger}
}

func (s *Service) Run(ctx context.Context, criteria models.Criteria) (Result, error) {
	if err := criteria.Validate(); err != nil {
		return Result{}, err
	}

	record, err := s.store.CreateScan(ctx, criteria)
	if err != nil {
		return Result{}, fmt.Errorf("create scan: %w", err)
	}
	logger := s.logger.With().Str("scan_id", record.ID).Logger()
	result := Result{ScanID: record.ID}

	if err := s.store.MarkProcessing(ctx, record.ID); err != nil {
		return result, s.fail(ctx, logger, record.ID, fmt.Errorf("mark processing: %w", err))
	}

	postings, reports, err := s.runner.RunReport(ctx, criteria)
	if err != nil {
		return result, s.fail(ctx, logger, record.ID, fmt.Errorf("run scan: %w", err))
	}
	result.Postings = postings
	result.Reports = reports

	// Partial results from a scan that hit its deadline are still persisted.
	persistCtx := context.WithoutCancel(ctx)
	if len(postings) > 0 {
		if err := s.store.InsertPostings(persistCtx, record.ID, postings); err != nil {
			return result, s.fail(ctx, logger, record.ID, fmt.Errorf("insert postings: %w", err))
		}
	}
	if err := s.store.CompleteScan(persistCtx, record.ID, len(postings)); err != nil {
		return result, s.fail(ctx, logger, record.ID, fmt.Errorf("complete scan: %w", err))
	}

	logger.Info().Int("total_found", len(postings)).Msg("scan completed")
	return result, nil
}

// fail detaches from ctx cancellation so a scan past its deadline is still marked failed.
func (s *Service) fail(ctx context.Context, logger zerolog.Logger, scanID string, cause error) error {
	if err := s.store.FailScan(context.WithoutCancel(ctx), scanID, cause.Error()); err != nil {
		logger.Error().Err(err).Msg("mark scan failed")
	}
	logger.Error().Err(cause).Msg("scan failed")
	return cause
}
