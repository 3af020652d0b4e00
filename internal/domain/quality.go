package domain

// Completeness scoring. Four disjoint buckets summing to 100; no field
// contributes to more than one bucket.
//
//	identity   40  location id, name, city, postcode (10 each)
//	pricing    15  at least one populated weekly cost field
//	richness   20  at least richnessThreshold populated descriptive fields
//	secondary  25  rating, contact, coordinates, activities, dietary (5 each)
const (
	identityFieldPoints = 10
	pricingPoints       = 15
	richnessPoints      = 20
	secondaryItemPoints = 5

	richnessThreshold = 5
)

// ComputeQualityScore computes the completeness score for a facility, an integer in
// [0,100]. Pure: recomputed whenever the record is recomputed, never stored
// independently.
func ComputeQualityScore(f *Facility) int {
	score := 0

	// Identity bucket.
	if f.LocationID != "" {
		score += identityFieldPoints
	}
	for _, field := range []*string{f.Name, f.City, f.Postcode} {
		if field != nil {
			score += identityFieldPoints
		}
	}

	// Pricing bucket.
	if f.WeeklyCostResidential != nil || f.WeeklyCostNursing != nil {
		score += pricingPoints
	}

	// Richness bucket: descriptive fields outside every other bucket.
	descriptive := []*string{
		f.ProviderID, f.BrandName, f.Email, f.AddressLine1,
		f.County, f.Region, f.LocalAuthority, f.CareTypesProvided,
	}
	populated := 0
	for _, field := range descriptive {
		if field != nil {
			populated++
		}
	}
	if populated >= richnessThreshold {
		score += richnessPoints
	}

	// Secondary bucket.
	if f.OverallRating != nil {
		score += secondaryItemPoints
	}
	if f.Phone != nil || f.Website != nil {
		score += secondaryItemPoints
	}
	if f.Latitude != nil && f.Longitude != nil {
		score += secondaryItemPoints
	}
	if len(f.RegulatedActivities) > 0 {
		score += secondaryItemPoints
	}
	if f.DietaryProvision != nil || f.Specialisms != nil {
		score += secondaryItemPoints
	}

	return score
}
