package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// consistentFacility returns a record that triggers no findings.
func consistentFacility() *Facility {
	f := fullFacility()
	f.RegistrationStatus = strPtr(registeredStatus)
	f.IsActive = true
	f.BedsTotal = intPtr(54)
	f.BedsAvailable = intPtr(20)
	f.YearRegistered = intPtr(2010)
	f.HasPersonalCareLicense = true
	f.QualityScore = ComputeQualityScore(f)
	return f
}

func findingCodes(findings []AnomalyFinding) []string {
	codes := make([]string, 0, len(findings))
	for _, f := range findings {
		codes = append(codes, f.Code)
	}
	return codes
}

func TestDetectAnomalies_ConsistentRecord(t *testing.T) {
	findings := DetectAnomalies(consistentFacility(), DefaultAnomalyConfig())
	assert.Empty(t, findings)
}

func TestDetectAnomalies_BedInversion(t *testing.T) {
	f := consistentFacility()
	f.BedsTotal = intPtr(5)
	f.BedsAvailable = intPtr(10)

	findings := DetectAnomalies(f, DefaultAnomalyConfig())

	require.Len(t, findings, 1)
	assert.Equal(t, "bed_inversion", findings[0].Code)
	assert.Equal(t, SeverityCritical, findings[0].Severity)
}

func TestDetectAnomalies_Coordinates(t *testing.T) {
	t.Run("missing axis is MEDIUM", func(t *testing.T) {
		f := consistentFacility()
		f.Longitude = nil
		// Losing an axis also drops the coordinate score bucket; keep the
		// quality check out of the way.
		f.QualityScore = ComputeQualityScore(f)

		findings := DetectAnomalies(f, DefaultAnomalyConfig())
		require.Len(t, findings, 1)
		assert.Equal(t, "missing_coordinates", findings[0].Code)
		assert.Equal(t, SeverityMedium, findings[0].Severity)
	})

	t.Run("exact zero is HIGH", func(t *testing.T) {
		f := consistentFacility()
		f.Latitude = floatPtr(0)

		findings := DetectAnomalies(f, DefaultAnomalyConfig())
		assert.Contains(t, findingCodes(findings), "zero_coordinate")
	})
}

func TestDetectAnomalies_FutureRegistration(t *testing.T) {
	fixed := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	f := consistentFacility()
	f.YearRegistered = intPtr(2027)

	findings := DetectAnomalies(f, DefaultAnomalyConfig())
	require.Len(t, findings, 1)
	assert.Equal(t, "registration_in_future", findings[0].Code)
	assert.Equal(t, SeverityCritical, findings[0].Severity)
}

func TestDetectAnomalies_ActiveWithoutRating(t *testing.T) {
	f := consistentFacility()
	f.OverallRating = nil
	f.QualityScore = ComputeQualityScore(f)

	findings := DetectAnomalies(f, DefaultAnomalyConfig())
	require.Len(t, findings, 1)
	assert.Equal(t, "active_without_rating", findings[0].Code)

	// An inactive facility without a rating is unremarkable.
	f.IsActive = false
	assert.Empty(t, DetectAnomalies(f, DefaultAnomalyConfig()))
}

func TestDetectAnomalies_SpecialismPopulationMismatch(t *testing.T) {
	f := consistentFacility()
	f.SpecialismDementia = boolPtr(true)
	f.ServesDementia = false

	findings := DetectAnomalies(f, DefaultAnomalyConfig())
	require.Len(t, findings, 1)
	assert.Equal(t, "specialism_population_mismatch", findings[0].Code)
	assert.Equal(t, SeverityWarning, findings[0].Severity)

	f.ServesDementia = true
	assert.Empty(t, DetectAnomalies(f, DefaultAnomalyConfig()))
}

func TestDetectAnomalies_NursingWithoutLicense(t *testing.T) {
	f := consistentFacility()
	f.ServiceTypes = []CatalogEntry{{ID: "care_home_nursing", Name: "Care home service with nursing"}}
	f.HasNursingLicense = false

	findings := DetectAnomalies(f, DefaultAnomalyConfig())
	assert.Contains(t, findingCodes(findings), "nursing_without_license")
}

func TestDetectAnomalies_LicenseWithoutActivities(t *testing.T) {
	f := consistentFacility()
	f.RegulatedActivities = []CatalogEntry{}
	f.QualityScore = ComputeQualityScore(f)

	findings := DetectAnomalies(f, DefaultAnomalyConfig())
	assert.Contains(t, findingCodes(findings), "license_without_activities")
}

func TestDetectAnomalies_LowQualityScore(t *testing.T) {
	f := consistentFacility()
	f.QualityScore = 29

	findings := DetectAnomalies(f, DefaultAnomalyConfig())
	assert.Contains(t, findingCodes(findings), "low_quality_score")

	cfg := DefaultAnomalyConfig()
	cfg.MinQualityScore = 20
	assert.Empty(t, DetectAnomalies(f, cfg))
}

func TestDetectAnomalies_RecentDeactivation(t *testing.T) {
	fixed := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	t.Run("inside window is INFO", func(t *testing.T) {
		f := consistentFacility()
		dereg := fixed.AddDate(0, 0, -30)
		f.DeregistrationDate = &dereg

		findings := DetectAnomalies(f, DefaultAnomalyConfig())
		require.Len(t, findings, 1)
		assert.Equal(t, "recently_deactivated", findings[0].Code)
		assert.Equal(t, SeverityInfo, findings[0].Severity)
	})

	t.Run("outside window is silent", func(t *testing.T) {
		f := consistentFacility()
		dereg := fixed.AddDate(-1, 0, 0)
		f.DeregistrationDate = &dereg

		assert.Empty(t, DetectAnomalies(f, DefaultAnomalyConfig()))
	})
}

func TestDetectAnomalies_MultipleFindings(t *testing.T) {
	f := consistentFacility()
	f.BedsAvailable = intPtr(100)
	f.Latitude = nil
	f.OverallRating = nil
	f.QualityScore = 10

	findings := DetectAnomalies(f, DefaultAnomalyConfig())

	codes := findingCodes(findings)
	assert.Contains(t, codes, "bed_inversion")
	assert.Contains(t, codes, "missing_coordinates")
	assert.Contains(t, codes, "active_without_rating")
	assert.Contains(t, codes, "low_quality_score")
}

func TestCountBySeverity(t *testing.T) {
	findings := []AnomalyFinding{
		{Severity: SeverityCritical},
		{Severity: SeverityCritical},
		{Severity: SeverityInfo},
	}

	counts := CountBySeverity(findings)
	assert.Equal(t, 2, counts[SeverityCritical])
	assert.Equal(t, 1, counts[SeverityInfo])
	assert.Empty(t, CountBySeverity(nil))
}
