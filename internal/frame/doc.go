// Package frame provides the date-indexed tables returned by the FRED reader.
//
// A Series is one named column keyed by observation date. A Table is the
// outer join of one or more series:
//   - the index is the sorted union of every series' dates
//   - columns keep the order the series were joined in
//   - cells with no observation are invalid null.Float values
//
// Tables can be written as CSV or XLSX and summarised with Describe.
package frame
