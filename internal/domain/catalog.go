package domain

// CatalogItem ties an aggregate entry to the sparse boolean source column
// that controls its membership. The aggregate builder iterates catalogs in
// declaration order, never the raw record, so output ordering is fixed by
// this enumeration and identical input always serializes identically.
type CatalogItem struct {
	ID          string
	DisplayName string
	SourceField string
}

// RegulatedActivityCatalog enumerates the regulator's fourteen legally
// authoritative license flags, in canonical order.
var RegulatedActivityCatalog = []CatalogItem{
	{"accommodation_nursing_personal_care", "Accommodation for persons who require nursing or personal care", "regulated_activity_accommodation_nursing_personal_care"},
	{"accommodation_substance_misuse", "Accommodation for persons who require treatment for substance misuse", "regulated_activity_accommodation_substance_misuse"},
	{"assessment_mental_health_act", "Assessment or medical treatment for persons detained under the Mental Health Act 1983", "regulated_activity_assessment_mental_health_act"},
	{"diagnostic_screening", "Diagnostic and screening procedures", "regulated_activity_diagnostic_screening"},
	{"family_planning", "Family planning", "regulated_activity_family_planning"},
	{"blood_supply_management", "Management of supply of blood and blood derived products", "regulated_activity_blood_supply_management"},
	{"maternity_midwifery", "Maternity and midwifery services", "regulated_activity_maternity_midwifery"},
	{"nursing_care", "Nursing care", "regulated_activity_nursing_care"},
	{"personal_care", "Personal care", "regulated_activity_personal_care"},
	{"slimming_clinics", "Services in slimming clinics", "regulated_activity_slimming_clinics"},
	{"surgical_procedures", "Surgical procedures", "regulated_activity_surgical_procedures"},
	{"termination_of_pregnancies", "Termination of pregnancies", "regulated_activity_termination_of_pregnancies"},
	{"remote_triage_transport", "Transport services, triage and medical advice provided remotely", "regulated_activity_remote_triage_transport"},
	{"treatment_disease_disorder_injury", "Treatment of disease, disorder or injury", "regulated_activity_treatment_disease_disorder_injury"},
}

// ServiceTypeCatalog enumerates the administrative service classifications,
// in canonical order. These are marketing/administrative categories, distinct
// from the legally authoritative regulated activities above.
var ServiceTypeCatalog = []CatalogItem{
	{"care_home_nursing", "Care home service with nursing", "service_type_care_home_nursing"},
	{"care_home_without_nursing", "Care home service without nursing", "service_type_care_home_without_nursing"},
	{"domiciliary_care", "Domiciliary care service", "service_type_domiciliary_care"},
	{"extra_care_housing", "Extra care housing services", "service_type_extra_care_housing"},
	{"shared_lives", "Shared lives", "service_type_shared_lives"},
	{"supported_living", "Supported living service", "service_type_supported_living"},
	{"acute_services_with_beds", "Acute services with overnight beds", "service_type_acute_services_with_beds"},
	{"acute_services_without_beds", "Acute services without overnight beds", "service_type_acute_services_without_beds"},
	{"ambulance_service", "Ambulance service", "service_type_ambulance_service"},
	{"blood_and_transplant", "Blood and transplant service", "service_type_blood_and_transplant"},
	{"community_healthcare", "Community healthcare service", "service_type_community_healthcare"},
	{"community_substance_misuse", "Community based services for people who misuse substances", "service_type_community_substance_misuse"},
	{"community_learning_disability", "Community based services for people with a learning disability", "service_type_community_learning_disability"},
	{"community_mental_health", "Community based services for people with mental health needs", "service_type_community_mental_health"},
	{"dental_service", "Dental service", "service_type_dental_service"},
	{"diagnostic_imaging", "Diagnostic and/or screening service", "service_type_diagnostic_imaging"},
	{"doctors_consultation", "Doctors consultation service", "service_type_doctors_consultation"},
	{"doctors_treatment", "Doctors treatment service", "service_type_doctors_treatment"},
	{"hospice_at_home", "Hospice services at home", "service_type_hospice_at_home"},
	{"hospice_services", "Hospice services", "service_type_hospice_services"},
	{"hospital_services_acute", "Hospital services for people with mental health needs, learning disabilities and problems with substance misuse", "service_type_hospital_services_acute"},
	{"hyperbaric_chamber", "Hyperbaric chamber services", "service_type_hyperbaric_chamber"},
	{"long_term_conditions", "Long term conditions services", "service_type_long_term_conditions"},
	{"mobile_doctors", "Mobile doctors service", "service_type_mobile_doctors"},
	{"prison_healthcare", "Prison healthcare services", "service_type_prison_healthcare"},
	{"rehabilitation_services", "Rehabilitation services", "service_type_rehabilitation_services"},
	{"remote_clinical_advice", "Remote clinical advice service", "service_type_remote_clinical_advice"},
	{"residential_substance_misuse", "Residential substance misuse treatment and/or rehabilitation service", "service_type_residential_substance_misuse"},
	{"specialist_college", "Specialist college service", "service_type_specialist_college"},
	{"urgent_care", "Urgent care services", "service_type_urgent_care"},
}

// ServiceUserBandCatalog enumerates the twelve population categories a
// facility can be registered to serve, in canonical order.
var ServiceUserBandCatalog = []CatalogItem{
	{"older_people", "Older People", "service_user_band_older_people"},
	{"younger_adults", "Younger Adults", "service_user_band_younger_adults"},
	{"children", "Children 0-18 years", "service_user_band_children"},
	{"dementia", "Dementia", "service_user_band_dementia"},
	{"mental_health", "Mental Health", "service_user_band_mental_health"},
	{"physical_disability", "Physical Disability", "service_user_band_physical_disability"},
	{"sensory_impairment", "Sensory Impairment", "service_user_band_sensory_impairment"},
	{"learning_disabilities_autism", "Learning Disabilities or Autistic Spectrum Disorder", "service_user_band_learning_disabilities_autism"},
	{"detained_mental_health_act", "People detained under the Mental Health Act", "service_user_band_detained_mental_health_act"},
	{"substance_misuse", "People who misuse drugs and alcohol", "service_user_band_substance_misuse"},
	{"eating_disorders", "People with an eating disorder", "service_user_band_eating_disorders"},
	{"whole_population", "Whole Population", "service_user_band_whole_population"},
}

// servesBandIDs maps each flat population-served flag to its band catalog
// entry. The flat booleans and the band aggregate must never disagree on
// membership; AssembleFacility derives both from the same source flags.
var servesBandIDs = struct {
	Elderly, Dementia, MentalHealth, PhysicalDisability, LearningDisabilities, YoungerAdults, Children string
}{
	Elderly:              "older_people",
	Dementia:             "dementia",
	MentalHealth:         "mental_health",
	PhysicalDisability:   "physical_disability",
	LearningDisabilities: "learning_disabilities_autism",
	YoungerAdults:        "younger_adults",
	Children:             "children",
}

// BuildAggregate collapses a catalog's sparse boolean source flags into an
// ordered list of entries. Only flags that are explicitly true produce an
// entry; false and absent flags produce nothing. The result is never nil so
// empty aggregates serialize as [] rather than null.
func BuildAggregate(raw RawFacilityRecord, catalog []CatalogItem) []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(catalog))
	for _, item := range catalog {
		if flagIsTrue(raw, item.SourceField) {
			entries = append(entries, CatalogEntry{ID: item.ID, Name: item.DisplayName})
		}
	}
	return entries
}

// AggregateContains reports whether an aggregate carries the given entry ID.
func AggregateContains(entries []CatalogEntry, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// flagIsTrue resolves a sparse boolean source field, treating absence and
// unparsable values as false.
func flagIsTrue(raw RawFacilityRecord, field string) bool {
	v, ok := raw.Get(field)
	if !ok {
		return false
	}
	b := SafeBool(v, nil)
	return b != nil && *b
}
