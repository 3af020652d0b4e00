package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *string
	}{
		{"trims whitespace", "  The Willows  ", strPtr("The Willows")},
		{"plain value", "Leeds", strPtr("Leeds")},
		{"empty string", "", nil},
		{"whitespace only", "   \t ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		once := CleanText("  B23 6DJ ")
		require.NotNil(t, once)
		twice := CleanText(*once)
		assert.Equal(t, once, twice)
	})
}

func TestSafeInt(t *testing.T) {
	fallback := intPtr(-1)

	tests := []struct {
		name     string
		input    string
		def      *int
		expected *int
	}{
		{"plain integer", "54", nil, intPtr(54)},
		{"embedded units", "54 beds", nil, intPtr(54)},
		{"currency prefix", "£1,250", nil, intPtr(1250)},
		{"leading sign", "-12", nil, intPtr(-12)},
		{"sign not leading ignored", "12-4", nil, intPtr(124)},
		{"empty returns default", "", fallback, fallback},
		{"no digits returns default", "unknown", fallback, fallback},
		{"bare sign returns default", "-", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeInt(tt.input, tt.def))
		})
	}
}

func TestSafeBool(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		def      *bool
		expected *bool
	}{
		{"literal TRUE", "TRUE", nil, boolPtr(true)},
		{"literal FALSE", "FALSE", nil, boolPtr(false)},
		{"mixed case True", "True", nil, boolPtr(true)},
		{"y", "y", nil, boolPtr(true)},
		{"YES", "YES", nil, boolPtr(true)},
		{"one", "1", nil, boolPtr(true)},
		{"t", "t", nil, boolPtr(true)},
		{"n", "n", nil, boolPtr(false)},
		{"No", "No", nil, boolPtr(false)},
		{"zero", "0", nil, boolPtr(false)},
		{"f", "f", nil, boolPtr(false)},
		{"padded", "  true  ", nil, boolPtr(true)},
		{"empty with false default", "", boolPtr(false), boolPtr(false)},
		{"empty with nil default", "", nil, nil},
		{"unknown never inferred", "maybe", nil, nil},
		{"numeric junk", "2", boolPtr(true), boolPtr(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeBool(tt.input, tt.def))
		})
	}
}

func TestSafeDate(t *testing.T) {
	date := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	tests := []struct {
		name     string
		input    string
		expected *time.Time
	}{
		{"ISO", "2025-01-15", date(2025, time.January, 15)},
		{"D/M/YYYY", "1/10/2010", date(2010, time.October, 1)},
		{"padded D/M/YYYY", "01/10/2010", date(2010, time.October, 1)},
		{"two-digit year windows forward", "1/10/20", date(2020, time.October, 1)},
		{"two-digit year at window edge", "1/10/50", date(2050, time.October, 1)},
		{"two-digit year windows back", "1/10/51", date(1951, time.October, 1)},
		{"two-digit year 99", "1/10/99", date(1999, time.October, 1)},
		{"garbage", "garbage", nil},
		{"US-style month first rejected", "10/25/2020", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeDate(tt.input, nil))
		})
	}

	t.Run("default propagates", func(t *testing.T) {
		def := date(2000, time.January, 1)
		assert.Equal(t, def, SafeDate("not a date", def))
	})
}

func TestNormalizeRating(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *string
	}{
		{"outstanding lowercase", "outstanding", strPtr(RatingOutstanding)},
		{"good padded", "  Good ", strPtr(RatingGood)},
		{"requires improvement", "REQUIRES IMPROVEMENT", strPtr(RatingRequiresImprovement)},
		{"inadequate", "Inadequate", strPtr(RatingInadequate)},
		{"not rated", "Not rated", strPtr(RatingNotRated)},
		{"no rating variant", "no rating", strPtr(RatingNotRated)},
		{"unrecognized maps to absent", "Excellent", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeRating(tt.input))
		})
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *int
	}{
		{"from ISO", "2010-10-01", intPtr(2010)},
		{"from D/M/YY", "1/10/10", intPtr(2010)},
		{"from windowed 19xx", "1/10/85", intPtr(1985)},
		{"absent propagates", "n/a", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractYear(tt.input))
		})
	}
}
