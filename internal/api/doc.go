// Package api provides the HTTP transport used to download FRED CSV files.
//
// Endpoint:
//   - https://fred.stlouisfed.org/graph/fredgraph.csv?id=<SERIES_ID>
//
// The client owns retries (exponential backoff with jitter on 5xx and 429),
// optional client-side rate limiting, and the pooled connections it releases
// on Close. Callers build the request URL; the client only transports it.
package api
