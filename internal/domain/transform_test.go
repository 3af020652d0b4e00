package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLocationID = "1-1234567890"

// selectableRecord returns a minimal raw record that passes the ingestion
// predicate.
func selectableRecord() RawFacilityRecord {
	return RawFacilityRecord{
		FieldLocationID: testLocationID,
		FieldSector:     "Social Care Org",
		FieldCareHome:   "Y",
	}
}

func TestSelectRecord(t *testing.T) {
	tests := []struct {
		name     string
		raw      RawFacilityRecord
		expected bool
	}{
		{"care home in sector", selectableRecord(), true},
		{"sector is case-insensitive", RawFacilityRecord{FieldSector: "social care org", FieldCareHome: "TRUE"}, true},
		{"wrong sector", RawFacilityRecord{FieldSector: "NHS Trust", FieldCareHome: "Y"}, false},
		{"care home flag false", RawFacilityRecord{FieldSector: "Social Care Org", FieldCareHome: "N"}, false},
		{"care home flag absent", RawFacilityRecord{FieldSector: "Social Care Org"}, false},
		{"empty record", RawFacilityRecord{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SelectRecord(tt.raw))
		})
	}
}

func TestAssembleFacility_IdentityErrors(t *testing.T) {
	t.Run("non-selected record", func(t *testing.T) {
		raw := RawFacilityRecord{FieldLocationID: testLocationID}
		_, err := AssembleFacility(raw)
		require.ErrorIs(t, err, ErrNotSelected)
	})

	t.Run("missing location id", func(t *testing.T) {
		raw := selectableRecord()
		delete(raw, FieldLocationID)
		_, err := AssembleFacility(raw)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing location id")
	})

	t.Run("malformed location id", func(t *testing.T) {
		for _, bad := range []string{"11234567890", "1-123", "x-1234567890", "12-1234567890"} {
			raw := selectableRecord()
			raw[FieldLocationID] = bad
			_, err := AssembleFacility(raw)
			require.Error(t, err, "id %q", bad)
		}
	})
}

func TestAssembleFacility_EndToEnd(t *testing.T) {
	fixed := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	raw := selectableRecord()
	raw["service_type_care_home_nursing"] = "TRUE"
	raw["regulated_activity_nursing_care"] = "FALSE"
	raw[FieldLatitude] = "52,533398"
	raw[FieldLongitude] = "-1,989241"
	raw[FieldBedsTotal] = "54"
	raw[FieldRegistrationDate] = "1/10/10"

	f, err := AssembleFacility(raw)
	require.NoError(t, err)

	assert.Equal(t, testLocationID, f.LocationID)
	assert.True(t, f.HasNursingLicense)
	require.NotNil(t, f.Latitude)
	assert.InDelta(t, 52.5334, *f.Latitude, 0.0001)
	require.NotNil(t, f.Longitude)
	assert.InDelta(t, -1.9892, *f.Longitude, 0.0001)
	require.NotNil(t, f.BedsTotal)
	assert.Equal(t, 54, *f.BedsTotal)
	require.NotNil(t, f.YearRegistered)
	assert.Equal(t, 2010, *f.YearRegistered)
	assert.Equal(t, fixed, f.UpdatedAt)

	for _, finding := range DetectAnomalies(f, DefaultAnomalyConfig()) {
		assert.NotEqual(t, SeverityCritical, finding.Severity, "finding %s", finding.Code)
	}
}

func TestAssembleFacility_NormalizesScalars(t *testing.T) {
	raw := selectableRecord()
	raw[FieldLocationName] = "  The Willows  "
	raw[FieldCity] = "Birmingham"
	raw[FieldPostcode] = ""
	raw[FieldOverallRating] = "  requires improvement "
	raw[FieldRegistrationStatus] = "Registered"
	raw[FieldBedsAvailable] = "12 beds"
	raw[FieldWeeklyCostResidential] = "£1,250"

	f, err := AssembleFacility(raw)
	require.NoError(t, err)

	assert.Equal(t, strPtr("The Willows"), f.Name)
	assert.Equal(t, strPtr("Birmingham"), f.City)
	assert.Nil(t, f.Postcode, "whitespace-only input is absent, not empty")
	assert.Equal(t, strPtr(RatingRequiresImprovement), f.OverallRating)
	assert.True(t, f.IsActive)
	assert.Equal(t, intPtr(12), f.BedsAvailable)
	assert.Equal(t, intPtr(1250), f.WeeklyCostResidential)
	assert.True(t, f.IsCareHome)
}

func TestAssembleFacility_AggregatesAndServesFlags(t *testing.T) {
	raw := selectableRecord()
	raw["service_user_band_older_people"] = "TRUE"
	raw["service_user_band_dementia"] = "yes"
	raw["service_user_band_children"] = "FALSE"
	raw["regulated_activity_personal_care"] = "TRUE"

	f, err := AssembleFacility(raw)
	require.NoError(t, err)

	require.Len(t, f.ServiceUserBands, 2)
	assert.Equal(t, "older_people", f.ServiceUserBands[0].ID)
	assert.Equal(t, "dementia", f.ServiceUserBands[1].ID)

	// Flat flags must agree with band aggregate membership.
	assert.True(t, f.ServesElderly)
	assert.True(t, f.ServesDementia)
	assert.False(t, f.ServesChildren)
	assert.False(t, f.ServesMentalHealth)
	for _, band := range []struct {
		id    string
		serve bool
	}{
		{"older_people", f.ServesElderly},
		{"dementia", f.ServesDementia},
		{"children", f.ServesChildren},
		{"mental_health", f.ServesMentalHealth},
		{"physical_disability", f.ServesPhysicalDisability},
		{"learning_disabilities_autism", f.ServesLearningDisabilities},
		{"younger_adults", f.ServesYoungerAdults},
	} {
		assert.Equal(t, AggregateContains(f.ServiceUserBands, band.id), band.serve, band.id)
	}

	require.Len(t, f.RegulatedActivities, 1)
	assert.Equal(t, "personal_care", f.RegulatedActivities[0].ID)
	assert.True(t, f.HasPersonalCareLicense)
}

func TestAssembleFacility_OutOfBoundsCoordinatesDropped(t *testing.T) {
	raw := selectableRecord()
	raw[FieldLatitude] = "100"
	raw[FieldLongitude] = "-1.989241"

	f, err := AssembleFacility(raw)
	require.NoError(t, err)

	assert.Nil(t, f.Latitude)
	require.NotNil(t, f.Longitude)
	assert.InDelta(t, -1.989241, *f.Longitude, 1e-9)
}

func TestAssembleFacility_Idempotent(t *testing.T) {
	fixed := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	raw := selectableRecord()
	raw[FieldLocationName] = "The Willows"
	raw["service_user_band_older_people"] = "TRUE"
	raw["service_type_care_home_nursing"] = "TRUE"
	raw[FieldLatitude] = "52533398"
	raw[FieldRegistrationDate] = "2010-10-01"

	first, err := AssembleFacility(raw)
	require.NoError(t, err)
	second, err := AssembleFacility(raw)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)

	firstFindings := DetectAnomalies(first, DefaultAnomalyConfig())
	secondFindings := DetectAnomalies(second, DefaultAnomalyConfig())
	assert.Equal(t, firstFindings, secondFindings)
	assert.Equal(t, first.QualityScore, second.QualityScore)
}
