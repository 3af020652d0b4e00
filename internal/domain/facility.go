package domain

import (
	"regexp"
	"time"
)

// locationIDRe matches the regulator's location identifier format,
// e.g. "1-1234567890".
var locationIDRe = regexp.MustCompile(`^\d-\d{10}$`)

// RawFacilityRecord is one row of the regulator's bulk directory file as a
// flat field-name → raw-text mapping. Absent fields are simply missing from
// the map; extractors must never insert empty-string placeholders for cells
// they could not read.
type RawFacilityRecord map[string]string

// Get returns the raw value for a field and whether it was present.
func (r RawFacilityRecord) Get(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// Raw field names for the flat scalar columns consumed by the assembler.
// Sparse per-item flag columns are named through the catalogs in catalog.go
// and the license policy table in license.go.
const (
	FieldLocationID     = "location_id"
	FieldProviderID     = "provider_id"
	FieldLocationName   = "location_name"
	FieldBrandName      = "brand_name"
	FieldSector         = "sector"
	FieldLocationType   = "location_type"
	FieldCareHome       = "care_home"
	FieldPhone          = "phone_number"
	FieldWebsite        = "website"
	FieldEmail          = "email"
	FieldAddressLine1   = "address_line_1"
	FieldAddressLine2   = "address_line_2"
	FieldCity           = "city"
	FieldCounty         = "county"
	FieldRegion         = "region"
	FieldPostcode       = "postcode"
	FieldLocalAuthority = "local_authority"
	FieldLatitude       = "latitude"
	FieldLongitude      = "longitude"

	FieldRegistrationStatus = "registration_status"
	FieldRegistrationDate   = "registration_date"
	FieldDeregistrationDate = "deregistration_date"

	FieldBedsTotal     = "care_homes_beds"
	FieldBedsAvailable = "beds_available"

	FieldOverallRating         = "latest_overall_rating"
	FieldLastInspectionDate    = "last_inspection_date"
	FieldRatingPublicationDate = "rating_publication_date"

	FieldWeeklyCostResidential = "weekly_cost_residential"
	FieldWeeklyCostNursing     = "weekly_cost_nursing"

	FieldCareTypesProvided      = "care_types_provided"
	FieldDietaryProvision       = "dietary_provision"
	FieldSpecialisms            = "specialisms"
	FieldSpecialismDementia     = "specialism_dementia"
	FieldSpecialismMentalHealth = "specialism_mental_health"
)

// registeredStatus is the regulator's marker for an actively registered location.
const registeredStatus = "Registered"

// CatalogEntry is one member of an ordered list-valued aggregate.
type CatalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Facility is the canonical normalized entity produced by one assembler run.
// Optional scalars are pointers; nil means the source did not carry a usable
// value and must round-trip as absent, never as a zero placeholder.
type Facility struct {
	LocationID   string  `json:"location_id"`
	ProviderID   *string `json:"provider_id,omitempty"`
	Name         *string `json:"name,omitempty"`
	BrandName    *string `json:"brand_name,omitempty"`
	Sector       *string `json:"sector,omitempty"`
	LocationType *string `json:"location_type,omitempty"`

	Phone   *string `json:"phone_number,omitempty"`
	Website *string `json:"website,omitempty"`
	Email   *string `json:"email,omitempty"`

	AddressLine1   *string `json:"address_line_1,omitempty"`
	AddressLine2   *string `json:"address_line_2,omitempty"`
	City           *string `json:"city,omitempty"`
	County         *string `json:"county,omitempty"`
	Region         *string `json:"region,omitempty"`
	Postcode       *string `json:"postcode,omitempty"`
	LocalAuthority *string `json:"local_authority,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	RegistrationStatus *string    `json:"registration_status,omitempty"`
	IsActive           bool       `json:"is_active"`
	RegistrationDate   *time.Time `json:"registration_date,omitempty"`
	YearRegistered     *int       `json:"year_registered,omitempty"`
	DeregistrationDate *time.Time `json:"deregistration_date,omitempty"`

	IsCareHome    bool `json:"is_care_home"`
	BedsTotal     *int `json:"beds_total,omitempty"`
	BedsAvailable *int `json:"beds_available,omitempty"`

	OverallRating         *string    `json:"overall_rating,omitempty"`
	LastInspectionDate    *time.Time `json:"last_inspection_date,omitempty"`
	RatingPublicationDate *time.Time `json:"rating_publication_date,omitempty"`

	WeeklyCostResidential *int `json:"weekly_cost_residential,omitempty"`
	WeeklyCostNursing     *int `json:"weekly_cost_nursing,omitempty"`

	CareTypesProvided      *string `json:"care_types_provided,omitempty"`
	DietaryProvision       *string `json:"dietary_provision,omitempty"`
	Specialisms            *string `json:"specialisms,omitempty"`
	SpecialismDementia     *bool   `json:"specialism_dementia,omitempty"`
	SpecialismMentalHealth *bool   `json:"specialism_mental_health,omitempty"`

	// Canonical license flags after source reconciliation (license.go).
	HasNursingLicense             bool `json:"has_nursing_license"`
	HasPersonalCareLicense        bool `json:"has_personal_care_license"`
	HasSurgicalProceduresLicense  bool `json:"has_surgical_procedures_license"`
	HasTreatmentOfDiseaseLicense  bool `json:"has_treatment_of_disease_license"`
	HasDiagnosticScreeningLicense bool `json:"has_diagnostic_screening_license"`

	// Ordered list-valued aggregates (catalog.go). Order is fixed by the
	// catalog enumeration so repeated runs serialize byte-identically.
	RegulatedActivities []CatalogEntry `json:"regulated_activities"`
	ServiceTypes        []CatalogEntry `json:"service_types"`
	ServiceUserBands    []CatalogEntry `json:"service_user_bands"`

	// Flat population-served passthroughs of the band flags.
	ServesElderly              bool `json:"serves_elderly"`
	ServesDementia             bool `json:"serves_dementia"`
	ServesMentalHealth         bool `json:"serves_mental_health"`
	ServesPhysicalDisability   bool `json:"serves_physical_disability"`
	ServesLearningDisabilities bool `json:"serves_learning_disabilities"`
	ServesYoungerAdults        bool `json:"serves_younger_adults"`
	ServesChildren             bool `json:"serves_children"`

	QualityScore int       `json:"quality_score"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Anomalies carries the detector findings so they land in the store
	// alongside the record. The detector never mutates anything else.
	Anomalies []AnomalyFinding `json:"anomalies,omitempty"`
}

// ValidLocationID reports whether s matches the regulator's id format.
func ValidLocationID(s string) bool {
	return locationIDRe.MatchString(s)
}
