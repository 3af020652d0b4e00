package pipeline

import (
	"context"
	"log/slog"

	"github.com/tryvailo/carehome-etl/internal/domain"
)

// FacilityTransformer implements Transformer over the domain assembler and
// anomaly detector.
type FacilityTransformer struct {
	anomalyCfg domain.AnomalyConfig
	logger     *slog.Logger
}

// NewTransformer creates a FacilityTransformer.
func NewTransformer(anomalyCfg domain.AnomalyConfig, logger *slog.Logger) *FacilityTransformer {
	return &FacilityTransformer{
		anomalyCfg: anomalyCfg,
		logger:     logger,
	}
}

func (t *FacilityTransformer) Transform(_ context.Context, raw domain.RawFacilityRecord) (*domain.Facility, []domain.AnomalyFinding, error) {
	facility, err := domain.AssembleFacility(raw)
	if err != nil {
		return nil, nil, err
	}

	// Findings are observational: they ride along with the record and are
	// tallied in the run summary, never used to reject assembly.
	findings := domain.DetectAnomalies(facility, t.anomalyCfg)
	facility.Anomalies = findings
	for _, finding := range findings {
		t.logger.Debug("anomaly detected",
			"location_id", facility.LocationID,
			"code", finding.Code,
			"severity", finding.Severity,
		)
	}

	return facility, findings, nil
}
