package scanner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rpaixao/a11y-analyzer/internal/db"
	"github.com/rpaixao/a11y-analyzer/internal/model"
	"github.com/rpaixao/a11y-analyzer/internal/normalizer"
	"github.com/rpaixao/a11y-analyzer/internal/urlutil"
)

// ToolRunner runs the external audit tool against a canonical URL and
// returns its raw JSON output.
type ToolRunner interface {
	Run(ctx context.Context, url string) ([]byte, error)
}

// Service orchestrates a scan end to end: canonicalize the input, run the
// tool, normalize its output, then persist. Persistence happens only after
// normalization succeeds in full; no partial report is ever written.
type Service struct {
	runner ToolRunner
	conn   *db.Connection
}

func New(toolRunner ToolRunner, conn *db.Connection) *Service {
	return &Service{runner: toolRunner, conn: conn}
}

// Scan audits rawInput and returns the persisted report. The first error of
// any stage is propagated unchanged in kind, so callers can branch on the
// sentinel errors of urlutil, runner, normalizer and db.
func (s *Service) Scan(ctx context.Context, rawInput string) (*model.Report, error) {
	canonical, err := urlutil.Canonicalize(rawInput)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", canonical).Msg("Starting scan")

	raw, err := s.runner.Run(ctx, canonical)
	if err != nil {
		log.Warn().Err(err).Str("url", canonical).Msg("Scan failed")
		return nil, err
	}

	result, err := normalizer.Normalize(raw)
	if err != nil {
		log.Warn().Err(err).Str("url", canonical).Msg("Tool output could not be normalized")
		return nil, err
	}

	// The id exists only once normalization succeeded, so a failed scan
	// never leaves an orphaned identifier behind.
	report := &model.Report{
		ID:               uuid.NewString(),
		URL:              canonical,
		OriginalInput:    rawInput,
		Status:           model.StatusCompleted,
		CreatedAt:        time.Now(),
		Metrics:          result.Metrics,
		Issues:           result.Issues,
		IssuesBySeverity: result.IssuesBySeverity,
	}

	if err := s.conn.InsertReport(report); err != nil {
		return nil, err
	}

	log.Info().Str("id", report.ID).Str("url", canonical).Int("issues", len(report.Issues)).Msg("Scan completed")
	return report, nil
}

// Lookup fetches a report by opaque id or by URL in any form a user might
// paste. Id lookup runs first; on a miss the input is canonicalized and the
// most recent report for that URL wins.
func (s *Service) Lookup(idOrURL string) (*model.Report, error) {
	report, err := s.conn.GetReportByID(idOrURL)
	if err == nil {
		return report, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	canonical, canonErr := urlutil.Canonicalize(idOrURL)
	if canonErr != nil {
		return nil, db.ErrNotFound
	}
	return s.conn.GetReportByURL(canonical)
}
