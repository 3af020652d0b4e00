package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// careHomeSector is the sector classification that, together with the
// care-home flag, selects records for the pipeline.
const careHomeSector = "Social Care Org"

// ErrNotSelected marks a raw record outside the pipeline's sector/type
// predicate. Callers skip these records; they are not failures.
var ErrNotSelected = errors.New("record outside sector/care-home predicate")

// SelectRecord applies the fixed two-field ingestion predicate: the sector
// classifier must name the social care sector and the care-home flag must be
// explicitly true.
func SelectRecord(raw RawFacilityRecord) bool {
	sector, _ := raw.Get(FieldSector)
	if !strings.EqualFold(strings.TrimSpace(sector), careHomeSector) {
		return false
	}
	return flagIsTrue(raw, FieldCareHome)
}

// AssembleFacility transforms one raw regulator row into the canonical
// normalized facility. Pure and idempotent: identical raw input under an
// identical catalog version (and frozen clock) yields byte-identical output.
//
// Only an unusable identity field is an error; every other malformed value
// degrades to absent inside its normalizer.
func AssembleFacility(raw RawFacilityRecord) (*Facility, error) {
	if !SelectRecord(raw) {
		return nil, ErrNotSelected
	}

	rawID, _ := raw.Get(FieldLocationID)
	id := CleanText(rawID)
	if id == nil {
		return nil, errors.New("assemble facility: missing location id")
	}
	if !ValidLocationID(*id) {
		return nil, fmt.Errorf("assemble facility: malformed location id %q", *id)
	}

	f := &Facility{
		LocationID:   *id,
		ProviderID:   cleanField(raw, FieldProviderID),
		Name:         cleanField(raw, FieldLocationName),
		BrandName:    cleanField(raw, FieldBrandName),
		Sector:       cleanField(raw, FieldSector),
		LocationType: cleanField(raw, FieldLocationType),

		Phone:   cleanField(raw, FieldPhone),
		Website: cleanField(raw, FieldWebsite),
		Email:   cleanField(raw, FieldEmail),

		AddressLine1:   cleanField(raw, FieldAddressLine1),
		AddressLine2:   cleanField(raw, FieldAddressLine2),
		City:           cleanField(raw, FieldCity),
		County:         cleanField(raw, FieldCounty),
		Region:         cleanField(raw, FieldRegion),
		Postcode:       cleanField(raw, FieldPostcode),
		LocalAuthority: cleanField(raw, FieldLocalAuthority),

		RegistrationStatus: cleanField(raw, FieldRegistrationStatus),
		RegistrationDate:   dateField(raw, FieldRegistrationDate),
		DeregistrationDate: dateField(raw, FieldDeregistrationDate),

		IsCareHome:    true, // guaranteed by the predicate
		BedsTotal:     intField(raw, FieldBedsTotal),
		BedsAvailable: intField(raw, FieldBedsAvailable),

		LastInspectionDate:    dateField(raw, FieldLastInspectionDate),
		RatingPublicationDate: dateField(raw, FieldRatingPublicationDate),

		WeeklyCostResidential: intField(raw, FieldWeeklyCostResidential),
		WeeklyCostNursing:     intField(raw, FieldWeeklyCostNursing),

		CareTypesProvided:      cleanField(raw, FieldCareTypesProvided),
		DietaryProvision:       cleanField(raw, FieldDietaryProvision),
		Specialisms:            cleanField(raw, FieldSpecialisms),
		SpecialismDementia:     boolField(raw, FieldSpecialismDementia),
		SpecialismMentalHealth: boolField(raw, FieldSpecialismMentalHealth),

		UpdatedAt: clock.Now().UTC(),
	}

	if v, ok := raw.Get(FieldOverallRating); ok {
		f.OverallRating = NormalizeRating(v)
	}
	if v, ok := raw.Get(FieldRegistrationDate); ok {
		f.YearRegistered = ExtractYear(v)
	}
	f.IsActive = f.RegistrationStatus != nil && *f.RegistrationStatus == registeredStatus

	if v, ok := raw.Get(FieldLatitude); ok {
		f.Latitude, _ = SanitizeLatitude(v)
	}
	if v, ok := raw.Get(FieldLongitude); ok {
		f.Longitude, _ = SanitizeLongitude(v)
	}

	f.HasNursingLicense = ResolveLicense(raw, LicenseNursing)
	f.HasPersonalCareLicense = ResolveLicense(raw, LicensePersonalCare)
	f.HasSurgicalProceduresLicense = ResolveLicense(raw, LicenseSurgicalProcedures)
	f.HasTreatmentOfDiseaseLicense = ResolveLicense(raw, LicenseTreatmentOfDisease)
	f.HasDiagnosticScreeningLicense = ResolveLicense(raw, LicenseDiagnosticScreening)

	f.RegulatedActivities = BuildAggregate(raw, RegulatedActivityCatalog)
	f.ServiceTypes = BuildAggregate(raw, ServiceTypeCatalog)
	f.ServiceUserBands = BuildAggregate(raw, ServiceUserBandCatalog)

	// Flat population flags are passthroughs of the same band source flags
	// the aggregate was built from, so the two representations cannot
	// disagree on membership.
	f.ServesElderly = AggregateContains(f.ServiceUserBands, servesBandIDs.Elderly)
	f.ServesDementia = AggregateContains(f.ServiceUserBands, servesBandIDs.Dementia)
	f.ServesMentalHealth = AggregateContains(f.ServiceUserBands, servesBandIDs.MentalHealth)
	f.ServesPhysicalDisability = AggregateContains(f.ServiceUserBands, servesBandIDs.PhysicalDisability)
	f.ServesLearningDisabilities = AggregateContains(f.ServiceUserBands, servesBandIDs.LearningDisabilities)
	f.ServesYoungerAdults = AggregateContains(f.ServiceUserBands, servesBandIDs.YoungerAdults)
	f.ServesChildren = AggregateContains(f.ServiceUserBands, servesBandIDs.Children)

	f.QualityScore = ComputeQualityScore(f)

	return f, nil
}

func cleanField(raw RawFacilityRecord, field string) *string {
	v, ok := raw.Get(field)
	if !ok {
		return nil
	}
	return CleanText(v)
}

func intField(raw RawFacilityRecord, field string) *int {
	v, ok := raw.Get(field)
	if !ok {
		return nil
	}
	return SafeInt(v, nil)
}

func boolField(raw RawFacilityRecord, field string) *bool {
	v, ok := raw.Get(field)
	if !ok {
		return nil
	}
	return SafeBool(v, nil)
}

func dateField(raw RawFacilityRecord, field string) *time.Time {
	v, ok := raw.Get(field)
	if !ok {
		return nil
	}
	return SafeDate(v, nil)
}
