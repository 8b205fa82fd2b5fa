// Package domain models per-city air-quality readings and the projections the
// dashboard draws from them.
//
// # Data Source
//
// The dataset is a single CSV table with a header row, one row per city per day.
// Rows are produced by joining EPA AQS daily pollutant summaries with vehicle
// mileage and NOAA daily weather for the same city:
//
//	City,State,Date,latitude,longitude,o3_median,pm25_median,...,dew_max
//	Ames,IA,2020-01-01,42.03,-93.62,0.031,10.2,...,28
//
// # Conventions
//
// Missing values:
//
//	Any metric cell that is empty, non-numeric, NaN or infinite is absent.
//	Absent is never the same as zero; see [Record.Value].
//
// Dates:
//
//	Date cells are kept as strings on the record. Range resolution and
//	filtering use a lenient parser ([ParseDate]) that accepts the common
//	spreadsheet layouts; chart series use the strict "2006-01-02" layout
//	([ParseSeriesDate]). A record whose date only parses leniently still counts
//	toward city aggregates but contributes no chart points.
//
// Aggregation:
//
//	Cities are keyed by the (City, State) pair. The PM2.5 sum zero-fills
//	missing readings, so a city without any PM2.5 value still aggregates with
//	an average of 0. Chart series instead exclude missing readings. Both
//	policies are intentional and must stay distinct.
//
// Color scale:
//
//	Marker colors follow the 9-class ColorBrewer "Reds" ramp over the extent
//	of per-city PM2.5 averages. A zero-width extent maps every city to the
//	middle of the ramp.
package domain
