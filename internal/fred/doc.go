// Package fred reads economic time series from the St. Louis Fed FRED graph
// CSV service.
//
// A Reader issues one GET per series identifier, parses each body as a
// DATE,value CSV, truncates it to the requested range and outer-joins all
// series into a single frame.Table whose columns follow the request order.
//
// Unknown identifiers are not rejected up front. FRED answers them with a
// short human-readable body instead of data; the reader recognises that body
// by the word "Error" at a fixed position of the fourth data row and reports
// an *InvalidSeriesError. Any other malformed body surfaces as the original
// parse or index error.
package fred
