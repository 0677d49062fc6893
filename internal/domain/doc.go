// Package domain models World Bank indicator observations for the emissions
// dashboard.
//
// # Data Source
//
// Observations come from the World Bank Indicators API v2, queried as
//
//	GET https://api.worldbank.org/v2/country/all/indicator/EN.ATM.CO2E.PC?format=json&per_page=20000&source=75
//
// The default indicator is EN.ATM.CO2E.PC (CO2 emissions, metric tons per
// capita) published through source 75 (Environment, Social and Governance).
//
// # Response Conventions
//
// Envelope:
//
//	[ {"page":1,"pages":1,"per_page":20000,"total":16758,"lastupdated":"2024-06-28"},
//	  [ {record}, {record}, ... ] ]
//
// The first element is page metadata, the second the records. Errors come
// back as a one-element array whose object carries a "message" list, with an
// HTTP 200 status:
//
//	[ {"message":[{"id":"120","key":"Invalid value","value":"The provided parameter value is not valid"}]} ]
//
// Record:
//
//	{"indicator":{"id":"EN.ATM.CO2E.PC","value":"CO2 emissions (metric tons per capita)"},
//	 "country":{"id":"US","value":"United States"},
//	 "countryiso3code":"USA","date":"2018","value":14.82,"unit":"","obs_status":"","decimal":1}
//
// "country.id" is the ISO-3166 alpha-2 code; "countryiso3code" is alpha-3 and
// is what map rendering keys on. "value" is null when no figure was reported
// for that country and year. "date" is a year string for annual series.
//
// Aggregates:
//
//	country/all includes regional and income-group pseudo-countries ("World",
//	"Euro area", "Low income"). They carry alpha-3 style codes (WLD, EMU, LIC)
//	but no map region. The country listing endpoint marks them with region
//	"Aggregates"; see [Normalize] for how callers filter them.
//
// # Normalization
//
// A record becomes an [Observation] only when it has a three-letter code, a
// numeric year and a finite value. Everything else is counted in
// [NormalizeStats] and dropped. The resulting [Table] is immutable.
package domain
