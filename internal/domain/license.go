package domain

// LicenseStrategy names how a canonical license flag is resolved from its
// candidate source signals. Keeping the strategy as table data (rather than
// branching in the resolver) makes every defect workaround visible and
// swappable without a code fork.
type LicenseStrategy string

const (
	// StrategyPrimaryOnly trusts the authoritative regulated-activity signal.
	StrategyPrimaryOnly LicenseStrategy = "primary_only"

	// StrategyFallbackOnly ignores the authoritative signal entirely in
	// favour of the administrative service classification. Used only where
	// the authoritative signal is known-defective.
	StrategyFallbackOnly LicenseStrategy = "fallback_only"

	// StrategyEitherTrue ORs both signals. Not used by the default table but
	// kept as a named alternative: source documentation has disagreed on
	// whether the nursing workaround should OR the signals or replace them.
	StrategyEitherTrue LicenseStrategy = "either_true"
)

// LicenseCategory identifies one of the five canonical license flags.
type LicenseCategory string

const (
	LicenseNursing             LicenseCategory = "nursing"
	LicensePersonalCare        LicenseCategory = "personal_care"
	LicenseSurgicalProcedures  LicenseCategory = "surgical_procedures"
	LicenseTreatmentOfDisease  LicenseCategory = "treatment_of_disease"
	LicenseDiagnosticScreening LicenseCategory = "diagnostic_screening"
)

// LicensePolicy declares, per license category, which source signal wins.
type LicensePolicy struct {
	Category       LicenseCategory
	PrimarySource  string // authoritative regulated-activity flag column
	FallbackSource string // administrative service-classification flag column
	Strategy       LicenseStrategy
}

// LicensePolicyTable is the audit surface for license reconciliation.
//
// The nursing entry is a deliberate, versioned workaround: the authoritative
// "regulated_activity_nursing_care" column is always false in the source
// dataset, even for facilities that unambiguously provide nursing care, so
// trusting it would produce 100% false negatives. Every other category uses
// the authoritative signal unmodified.
var LicensePolicyTable = []LicensePolicy{
	{
		Category:       LicenseNursing,
		PrimarySource:  "regulated_activity_nursing_care",
		FallbackSource: "service_type_care_home_nursing",
		Strategy:       StrategyFallbackOnly,
	},
	{
		Category:       LicensePersonalCare,
		PrimarySource:  "regulated_activity_personal_care",
		FallbackSource: "service_type_care_home_without_nursing",
		Strategy:       StrategyPrimaryOnly,
	},
	{
		Category:       LicenseSurgicalProcedures,
		PrimarySource:  "regulated_activity_surgical_procedures",
		FallbackSource: "service_type_acute_services_with_beds",
		Strategy:       StrategyPrimaryOnly,
	},
	{
		Category:       LicenseTreatmentOfDisease,
		PrimarySource:  "regulated_activity_treatment_disease_disorder_injury",
		FallbackSource: "service_type_community_healthcare",
		Strategy:       StrategyPrimaryOnly,
	},
	{
		Category:       LicenseDiagnosticScreening,
		PrimarySource:  "regulated_activity_diagnostic_screening",
		FallbackSource: "service_type_diagnostic_imaging",
		Strategy:       StrategyPrimaryOnly,
	},
}

// ResolveLicense reconciles one category's source signals per the policy
// table. Unknown categories resolve to false.
func ResolveLicense(raw RawFacilityRecord, category LicenseCategory) bool {
	return ResolveLicenseWith(raw, category, LicensePolicyTable)
}

// ResolveLicenseWith resolves against an explicit policy table, letting
// callers and tests swap strategies without touching the default table.
func ResolveLicenseWith(raw RawFacilityRecord, category LicenseCategory, table []LicensePolicy) bool {
	for _, p := range table {
		if p.Category != category {
			continue
		}
		switch p.Strategy {
		case StrategyPrimaryOnly:
			return flagIsTrue(raw, p.PrimarySource)
		case StrategyFallbackOnly:
			return flagIsTrue(raw, p.FallbackSource)
		case StrategyEitherTrue:
			return flagIsTrue(raw, p.PrimarySource) || flagIsTrue(raw, p.FallbackSource)
		}
	}
	return false
}
