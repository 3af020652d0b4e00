package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tryvailo/carehome-etl/internal/domain"
	"github.com/tryvailo/carehome-etl/internal/observability"
)

// ErrFailureRateExceeded aborts a run before the destination write when too
// large a fraction of selected records failed to assemble. The destination
// is left untouched.
var ErrFailureRateExceeded = errors.New("per-record failure rate exceeds the configured maximum")

// Extractor reads the entire raw directory export.
type Extractor interface {
	ExtractAll(ctx context.Context) ([]domain.RawFacilityRecord, error)
}

// Transformer converts one raw record into a normalized facility plus its
// audit findings.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawFacilityRecord) (*domain.Facility, []domain.AnomalyFinding, error)
}

// BatchLoader writes the normalized batch to the destination store. The
// write must be atomic: all rows visible or none.
type BatchLoader interface {
	LoadBatch(ctx context.Context, facilities []*domain.Facility) error
}

// Publisher optionally fans the normalized batch out to downstream
// consumers. Publish failures are logged, never fatal.
type Publisher interface {
	PublishBatch(ctx context.Context, runID string, facilities []*domain.Facility) error
}

// RecordFailure is one record-level error surfaced in the run summary.
type RecordFailure struct {
	Index      int    `json:"index"`
	LocationID string `json:"location_id,omitempty"`
	Reason     string `json:"reason"`
}

// ScoreDistribution summarizes quality scores across a run. Buckets are
// twenty-point bands: 0-19, 20-39, 40-59, 60-79, 80-100.
type ScoreDistribution struct {
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Mean    float64 `json:"mean"`
	Buckets [5]int  `json:"buckets"`
}

// RunSummary is the user-visible outcome of a run. A run never ends in
// silent partial success: every outcome carries these counts.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Extracted int `json:"extracted"`
	Skipped   int `json:"skipped"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	Failures      []RecordFailure         `json:"failures,omitempty"`
	Scores        ScoreDistribution       `json:"scores"`
	AnomalyCounts map[domain.Severity]int `json:"anomaly_counts"`
}

// Pipeline orchestrates one extract-transform-load run over the bulk export.
type Pipeline struct {
	extractor      Extractor
	transformer    Transformer
	loader         BatchLoader
	publisher      Publisher
	logger         *slog.Logger
	metrics        *observability.Metrics
	maxFailureRate float64

	ready   atomic.Bool
	mu      sync.Mutex
	summary *RunSummary
}

// New creates a Pipeline. publisher may be nil to disable fan-out.
func New(e Extractor, t Transformer, l BatchLoader, p Publisher, logger *slog.Logger, metrics *observability.Metrics, maxFailureRate float64) *Pipeline {
	return &Pipeline{
		extractor:      e,
		transformer:    t,
		loader:         l,
		publisher:      p,
		logger:         logger,
		metrics:        metrics,
		maxFailureRate: maxFailureRate,
	}
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no completed run yet")
	}
	return nil
}

// Summary returns the latest completed run summary, or nil before the first
// run finishes.
func (p *Pipeline) Summary() *RunSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summary
}

// Run executes one full batch: extract everything, transform record by
// record collecting per-record errors, gate on the failure rate, then load
// the whole batch atomically. Individual record failures never abort the
// run; crossing the failure-rate threshold or a destination write failure
// does.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	summary := &RunSummary{
		RunID:         uuid.NewString(),
		StartedAt:     start.UTC(),
		AnomalyCounts: make(map[domain.Severity]int),
	}

	p.logger.Info("run started", "run_id", summary.RunID)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	rawRecords, err := p.extractor.ExtractAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract records: %w", err)
	}
	summary.Extracted = len(rawRecords)
	p.metrics.RecordsExtracted.Add(float64(len(rawRecords)))

	facilities := p.transformAll(ctx, rawRecords, summary)

	processed := summary.Succeeded + summary.Failed
	if processed > 0 {
		rate := float64(summary.Failed) / float64(processed)
		if rate > p.maxFailureRate {
			p.logger.Error("aborting run before load",
				"run_id", summary.RunID,
				"failure_rate", rate,
				"max_failure_rate", p.maxFailureRate,
			)
			return summary, fmt.Errorf("%w: %.3f > %.3f", ErrFailureRateExceeded, rate, p.maxFailureRate)
		}
	}

	if len(facilities) > 0 {
		if err := p.loader.LoadBatch(ctx, facilities); err != nil {
			p.logger.Error("load batch failed", "run_id", summary.RunID, "batch_size", len(facilities), "error", err)
			return summary, fmt.Errorf("load batch: %w", err)
		}
		p.metrics.RecordsLoaded.Add(float64(len(facilities)))
	}

	if p.publisher != nil && len(facilities) > 0 {
		if err := p.publisher.PublishBatch(ctx, summary.RunID, facilities); err != nil {
			p.logger.Warn("publish batch failed", "run_id", summary.RunID, "error", err)
		}
	}

	summary.Duration = time.Since(start)
	p.metrics.RunDuration.Observe(summary.Duration.Seconds())

	p.mu.Lock()
	p.summary = summary
	p.mu.Unlock()
	p.ready.Store(true)

	p.logger.Info("run complete",
		"run_id", summary.RunID,
		"extracted", summary.Extracted,
		"skipped", summary.Skipped,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"score_mean", summary.Scores.Mean,
		"anomalies", summary.AnomalyCounts,
		"duration", summary.Duration,
	)
	return summary, nil
}

// transformAll runs the per-record transform, collecting failures and
// summary statistics. Records outside the ingestion predicate are skipped,
// not failed.
func (p *Pipeline) transformAll(ctx context.Context, rawRecords []domain.RawFacilityRecord, summary *RunSummary) []*domain.Facility {
	facilities := make([]*domain.Facility, 0, len(rawRecords))
	scoreTotal := 0

	for i, raw := range rawRecords {
		if !domain.SelectRecord(raw) {
			summary.Skipped++
			p.metrics.RecordsSkipped.Inc()
			continue
		}

		facility, findings, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			id, _ := raw.Get(domain.FieldLocationID)
			p.logger.Warn("transform failed, continuing", "index", i, "location_id", id, "error", err)
			p.metrics.RecordsFailed.Inc()
			summary.Failed++
			summary.Failures = append(summary.Failures, RecordFailure{
				Index:      i,
				LocationID: id,
				Reason:     err.Error(),
			})
			continue
		}

		summary.Succeeded++
		p.metrics.RecordsNormalized.Inc()
		p.metrics.QualityScore.Observe(float64(facility.QualityScore))

		scoreTotal += facility.QualityScore
		observeScore(&summary.Scores, facility.QualityScore, summary.Succeeded == 1)
		for severity, n := range domain.CountBySeverity(findings) {
			summary.AnomalyCounts[severity] += n
			p.metrics.AnomalyFindings.WithLabelValues(string(severity)).Add(float64(n))
		}

		facilities = append(facilities, facility)
	}

	if summary.Succeeded > 0 {
		summary.Scores.Mean = float64(scoreTotal) / float64(summary.Succeeded)
	}
	return facilities
}

// observeScore folds one quality score into the distribution.
func observeScore(d *ScoreDistribution, score int, first bool) {
	if first || score < d.Min {
		d.Min = score
	}
	if first || score > d.Max {
		d.Max = score
	}
	bucket := score / 20
	if bucket > 4 {
		bucket = 4
	}
	d.Buckets[bucket]++
}
