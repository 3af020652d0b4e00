// Package domain models care-facility records from the national regulator's
// bulk directory export and the pure transforms that normalize them.
//
// # Data Source
//
// The regulator publishes a monthly directory of every registered location as
// a wide flat file (~130 columns per row). Column content is notoriously
// inconsistent: booleans appear as TRUE/FALSE, Y/N, yes/no, 1/0 in any case;
// dates appear as ISO, D/M/YYYY, or D/M/YY; coordinates arrive with locale
// commas, stripped decimal points, or dropped leading digits.
//
// # Field Conventions
//
// Location identifiers:
//
//	"<digit>-<10 digits>", e.g. "1-1234567890". Regulator-assigned, unique,
//	and the upsert key for the destination store.
//
// Booleans:
//
//	The export emits literal "TRUE"/"FALSE" tokens in unpredictable case;
//	these are honoured first. A broader truthy set {y, yes, true, 1, t} and
//	falsy set {n, no, false, 0, f} covers the rest. Anything else is treated
//	as unknown, never inferred. See [SafeBool].
//
// Dates:
//
//	Three shapes only: "2006-01-02", "2/1/2006", and "2/1/06". Two-digit
//	years window at 50: 00-50 -> 20yy, 51-99 -> 19yy. See [SafeDate].
//
// Coordinates:
//
//	Malformed in three recurring ways: decimal comma ("52,533398"),
//	thousands-grouping commas with the point lost ("52,533,398"), and bare
//	digit runs ("52533398"). The sanitizer repairs best-effort and enforces
//	the national bounding box (lat 49.8-60.9, lon -8.7-2.1); it never emits
//	an out-of-range value. See [SanitizeLatitude] and [SanitizeLongitude].
//
// Sparse flag columns:
//
//	Regulated activities (14), service classifications (30) and service-user
//	bands (12) are one boolean column each. They are enumerated as catalogs
//	in catalog.go and collapsed into ordered list aggregates; only
//	explicitly-true flags produce entries.
//
// # Known Data Defect
//
// The authoritative "Nursing care" regulated-activity column is always false
// in the export, even for facilities that unambiguously provide nursing
// care. The canonical nursing license is therefore resolved from the
// administrative "Care home service with nursing" classification instead.
// The exception is data, not a branch: see [LicensePolicyTable].
package domain
