package domain

import (
	"strconv"
	"strings"
)

// RepairBranch identifies which heuristic produced an accepted coordinate,
// for the repair audit log. The heuristics are tunable; the one hard
// invariant is that no sanitizer ever returns an out-of-bounds value.
type RepairBranch string

const (
	RepairNone            RepairBranch = "none"              // parsed as-is
	RepairCommaDecimal    RepairBranch = "comma_decimal"     // locale comma used as decimal point
	RepairDecimalInserted RepairBranch = "decimal_inserted"  // decimal point restored at the axis offset
	RepairMagnitude       RepairBranch = "magnitude_divided" // scale-corrupted value divided back into range
	RepairGroupingStrip   RepairBranch = "grouping_stripped" // thousands separators removed, then divided
	RepairRejected        RepairBranch = "rejected"          // no candidate landed inside the bounding box
)

// axisSpec describes one coordinate axis: its national bounds and how many
// integer digits a well-formed value carries before the decimal point.
type axisSpec struct {
	min, max  float64
	intDigits int
}

// National bounding box for Great Britain and Northern Ireland. Values
// outside these ranges cannot be a facility coordinate and are discarded.
var (
	latitudeAxis  = axisSpec{min: 49.8, max: 60.9, intDigits: 2}
	longitudeAxis = axisSpec{min: -8.7, max: 2.1, intDigits: 1}
)

// SanitizeLatitude repairs a malformed latitude string and enforces the
// national bounds. Returns nil when no repair candidate lands in range.
func SanitizeLatitude(s string) (*float64, RepairBranch) {
	return sanitizeCoordinate(s, latitudeAxis)
}

// SanitizeLongitude repairs a malformed longitude string and enforces the
// national bounds. Returns nil when no repair candidate lands in range.
func SanitizeLongitude(s string) (*float64, RepairBranch) {
	return sanitizeCoordinate(s, longitudeAxis)
}

// sanitizeCoordinate runs the repair cascade:
//
//  1. no separators: restore the decimal point at the axis offset, falling
//     back to 1e5/1e6 magnitude division for scale-corrupted values
//  2. one separator: treat it as the decimal point (commas are a locale
//     artifact of the upstream export)
//  3. several separators: strip them as thousands grouping and divide
//
// The sign is extracted first and re-applied to every candidate so the
// bounds check always sees the signed value.
func sanitizeCoordinate(s string, axis axisSpec) (*float64, RepairBranch) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return nil, RepairRejected
	}

	sign := 1.0
	if s[0] == '-' || s[0] == '+' {
		if s[0] == '-' {
			sign = -1.0
		}
		s = s[1:]
	}

	separators := strings.Count(s, ",") + strings.Count(s, ".")
	digits := strings.NewReplacer(",", "", ".", "").Replace(s)
	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return nil, RepairRejected
	}

	switch {
	case separators == 0:
		if v, ok := axis.accept(sign, insertDecimal(digits, axis.intDigits)); ok {
			if len(digits) <= axis.intDigits {
				return v, RepairNone
			}
			return v, RepairDecimalInserted
		}
		if v, ok := axis.divideIntoRange(sign, digits); ok {
			return v, RepairMagnitude
		}

	case separators == 1:
		candidate := strings.Replace(s, ",", ".", 1)
		if v, ok := axis.accept(sign, candidate); ok {
			if strings.Contains(s, ",") {
				return v, RepairCommaDecimal
			}
			return v, RepairNone
		}

	default:
		if v, ok := axis.accept(sign, insertDecimal(digits, axis.intDigits)); ok {
			return v, RepairGroupingStrip
		}
		if v, ok := axis.divideIntoRange(sign, digits); ok {
			return v, RepairGroupingStrip
		}
	}

	return nil, RepairRejected
}

// insertDecimal restores a decimal point after the axis's integer digits.
func insertDecimal(digits string, intDigits int) string {
	if len(digits) <= intDigits {
		return digits
	}
	return digits[:intDigits] + "." + digits[intDigits:]
}

// divideIntoRange treats the digit run as a scale-corrupted integer and
// accepts the first of /1e5, /1e6 that lands inside the bounds.
func (a axisSpec) divideIntoRange(sign float64, digits string) (*float64, bool) {
	n, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil, false
	}
	for _, divisor := range []float64{1e5, 1e6} {
		v := sign * n / divisor
		if a.inBounds(v) {
			return &v, true
		}
	}
	return nil, false
}

// accept parses candidate, applies the sign, and returns the value only if
// it lies inside the axis bounds.
func (a axisSpec) accept(sign float64, candidate string) (*float64, bool) {
	n, err := strconv.ParseFloat(candidate, 64)
	if err != nil {
		return nil, false
	}
	v := sign * n
	if !a.inBounds(v) {
		return nil, false
	}
	return &v, true
}

func (a axisSpec) inBounds(v float64) bool {
	return v >= a.min && v <= a.max
}
