package domain

import (
	"strconv"
	"strings"
	"time"
)

// Scalar normalizers for the regulator's inconsistently encoded text fields.
// All of them recover from malformed input locally: they return the
// caller-supplied default (or nil for "absent") and never propagate an error.

// truthy and falsy are checked only after the literal TRUE/FALSE tokens the
// source emits. Anything outside both sets is unknowable, never inferred.
var (
	truthyTokens = map[string]struct{}{"y": {}, "yes": {}, "true": {}, "1": {}, "t": {}}
	falsyTokens  = map[string]struct{}{"n": {}, "no": {}, "false": {}, "0": {}, "f": {}}
)

// CleanText trims whitespace and returns nil for empty or whitespace-only
// input. Idempotent.
func CleanText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// SafeInt strips every character except digits and a leading sign, then
// parses. Returns def when nothing parsable remains.
func SafeInt(s string, def *int) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}

	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if i == 0 && (r == '-' || r == '+') {
			b.WriteRune(r)
		}
	}

	v, err := strconv.Atoi(b.String())
	if err != nil {
		return def
	}
	return &v
}

// SafeBool normalizes the source's boolean encodings. The literal
// "TRUE"/"FALSE" tokens the regulator emits (in unpredictable case) are
// checked first, then the broader truthy/falsy sets. Any other value returns
// def.
func SafeBool(s string, def *bool) *bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def
	}

	switch s {
	case "true":
		return boolPtr(true)
	case "false":
		return boolPtr(false)
	}

	if _, ok := truthyTokens[s]; ok {
		return boolPtr(true)
	}
	if _, ok := falsyTokens[s]; ok {
		return boolPtr(false)
	}
	return def
}

// SafeDate parses the three date shapes the source uses: ISO "2006-01-02",
// "2/1/2006", and "2/1/06" with two-digit-year windowing (00-50 -> 20yy,
// 51-99 -> 19yy). Unparsable input returns def, never an error.
func SafeDate(s string, def *time.Time) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	if t, err := time.Parse("2/1/2006", s); err == nil {
		return &t
	}

	// D/M/YY: Go's "06" layout windows years at 69, the source windows at 50,
	// so the year component is widened by hand before parsing.
	parts := strings.Split(s, "/")
	if len(parts) == 3 && len(parts[2]) == 2 {
		yy, err := strconv.Atoi(parts[2])
		if err != nil {
			return def
		}
		year := 1900 + yy
		if yy <= 50 {
			year = 2000 + yy
		}
		widened := parts[0] + "/" + parts[1] + "/" + strconv.Itoa(year)
		if t, err := time.Parse("2/1/2006", widened); err == nil {
			return &t
		}
	}

	return def
}

// Canonical inspection-rating values.
const (
	RatingOutstanding         = "Outstanding"
	RatingGood                = "Good"
	RatingRequiresImprovement = "Requires Improvement"
	RatingInadequate          = "Inadequate"
	RatingNotRated            = "Not Rated"
)

// NormalizeRating maps case and whitespace variants of the regulator's
// inspection-rating text onto the five canonical values. Unrecognized input
// maps to nil rather than being passed through.
func NormalizeRating(s string) *string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "outstanding":
		return strPtr(RatingOutstanding)
	case "good":
		return strPtr(RatingGood)
	case "requires improvement":
		return strPtr(RatingRequiresImprovement)
	case "inadequate":
		return strPtr(RatingInadequate)
	case "not rated", "no rating", "not yet rated":
		return strPtr(RatingNotRated)
	default:
		return nil
	}
}

// ExtractYear applies SafeDate and extracts the calendar year. Absent
// propagates.
func ExtractYear(s string) *int {
	t := SafeDate(s, nil)
	if t == nil {
		return nil
	}
	y := t.Year()
	return &y
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }
