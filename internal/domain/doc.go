// Package domain models lightning flash detections from the ISS LIS feed.
//
// # Data Source
//
// Flash lists are exported by the NASA GHRC ISS Lightning Imaging Sensor
// portal (https://lightning.nsstc.nasa.gov/isslisib/) as plain text, one
// export per year of interest. Each export starts with a header line and
// then carries one detection per line, columns separated by runs of
// whitespace. Only four columns are used:
//
//	0  Time       "2020-152T13:04:05.123Z"
//	1  Months     "[Jun"
//	4  Latitude   "40.1234,"
//	5  Longitude  "44.5678)"
//
// # Feed Conventions
//
// Time format:
//
//	<year>-<day-of-year>T<hour>:<minute>:<second>.<fraction>Z, always UTC,
//	with one to six fraction digits.
//	Day-of-year is three digits (001–366). Some exports wrap the row in
//	brackets, so a single leading "[" is stripped before parsing.
//	Only the hour of day is kept; the date is implied by the export year.
//
// Month labels:
//
//	Three-letter English abbreviations ("Jan" … "Dec"). Every "[" is removed.
//	Labels are not validated; unknown labels drop out of monthly counts.
//
// Coordinates:
//
//	Latitude and longitude are printed as a tuple that the whitespace split
//	tears apart, leaving a trailing "," on latitude and a trailing ")" on
//	longitude. Every "," is deleted from latitude and every ")" from
//	longitude before conversion.
//
//	The comma is deleted, not read as a decimal separator: "40,123" becomes
//	40123, which then falls outside any sane region and is filtered away.
//	This mirrors how the exports have always been read and is kept as a
//	known upstream quirk.
//
// # Malformed Rows
//
// Rows with fewer than six columns, an unparseable timestamp, or a
// non-numeric or non-finite coordinate are dropped. Drops are counted in
// [FeedStats] by column and never returned to the caller; see [ParseRow].
//
// # Regions
//
// A [Region] is an inclusive latitude/longitude rectangle. Ingestion keeps a
// row only if it lies inside the run's region; [FilterByRegion] narrows an
// already ingested sequence further, e.g. to a province inside a country.
package domain
