package domain

import (
	"fmt"
	"time"
)

// Severity grades an anomaly finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// AnomalyFinding describes one logical inconsistency observed in a
// normalized facility. Findings are report-only: the detector never mutates
// the record and never blocks assembly.
type AnomalyFinding struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// AnomalyConfig tunes the threshold-driven checks.
type AnomalyConfig struct {
	// MinQualityScore is the completeness score below which a HIGH finding
	// is raised.
	MinQualityScore int

	// RecentDeactivationWindow bounds the INFO finding for facilities whose
	// registration was recently withdrawn.
	RecentDeactivationWindow time.Duration
}

// DefaultAnomalyConfig matches the thresholds used by the production run.
func DefaultAnomalyConfig() AnomalyConfig {
	return AnomalyConfig{
		MinQualityScore:          30,
		RecentDeactivationWindow: 90 * 24 * time.Hour,
	}
}

// DetectAnomalies evaluates every rule independently and returns the full
// set of findings; a record may trigger several at once and a fully
// consistent record triggers none.
func DetectAnomalies(f *Facility, cfg AnomalyConfig) []AnomalyFinding {
	var findings []AnomalyFinding
	add := func(code string, sev Severity, format string, args ...any) {
		findings = append(findings, AnomalyFinding{
			Code:     code,
			Severity: sev,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if f.BedsAvailable != nil && f.BedsTotal != nil && *f.BedsAvailable > *f.BedsTotal {
		add("bed_inversion", SeverityCritical,
			"beds available (%d) exceeds beds total (%d)", *f.BedsAvailable, *f.BedsTotal)
	}

	if AggregateContains(f.ServiceTypes, "care_home_nursing") && !f.HasNursingLicense {
		add("nursing_without_license", SeverityHigh,
			"facility provides nursing care but the nursing license flag is false")
	}

	if f.Latitude == nil || f.Longitude == nil {
		add("missing_coordinates", SeverityMedium, "latitude or longitude is missing")
	}
	if (f.Latitude != nil && *f.Latitude == 0) || (f.Longitude != nil && *f.Longitude == 0) {
		add("zero_coordinate", SeverityHigh, "latitude or longitude is exactly zero")
	}

	if f.YearRegistered != nil && *f.YearRegistered > clock.Now().UTC().Year() {
		add("registration_in_future", SeverityCritical,
			"registration year %d is in the future", *f.YearRegistered)
	}

	if f.IsActive && f.OverallRating == nil {
		add("active_without_rating", SeverityMedium, "active facility has no overall rating")
	}

	if f.SpecialismDementia != nil && *f.SpecialismDementia && !f.ServesDementia {
		add("specialism_population_mismatch", SeverityWarning,
			"dementia specialism flagged but dementia band is not served")
	}
	if f.SpecialismMentalHealth != nil && *f.SpecialismMentalHealth && !f.ServesMentalHealth {
		add("specialism_population_mismatch", SeverityWarning,
			"mental health specialism flagged but mental health band is not served")
	}

	if anyLicense(f) && len(f.RegulatedActivities) == 0 {
		add("license_without_activities", SeverityWarning,
			"a license flag is true but the regulated-activity list is empty")
	}

	if f.QualityScore < cfg.MinQualityScore {
		add("low_quality_score", SeverityHigh,
			"quality score %d is below the %d threshold", f.QualityScore, cfg.MinQualityScore)
	}

	if f.DeregistrationDate != nil {
		since := clock.Now().UTC().Sub(f.DeregistrationDate.UTC())
		if since >= 0 && since <= cfg.RecentDeactivationWindow {
			add("recently_deactivated", SeverityInfo,
				"registration withdrawn on %s", f.DeregistrationDate.Format("2006-01-02"))
		}
	}

	return findings
}

// CountBySeverity tallies findings for the run summary and metrics.
func CountBySeverity(findings []AnomalyFinding) map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

func anyLicense(f *Facility) bool {
	return f.HasNursingLicense ||
		f.HasPersonalCareLicense ||
		f.HasSurgicalProceduresLicense ||
		f.HasTreatmentOfDiseaseLicense ||
		f.HasDiagnosticScreeningLicense
}
