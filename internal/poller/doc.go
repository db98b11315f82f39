// Package poller implements the gatherer's poll loop.
//
// On start and then every interval the poller reads all configured FRED
// series for the current window, tags the joined table with a fresh run id
// and hands it to a TableHandler (normally the observation writer). A failed
// cycle is logged and counted; the next tick tries again.
package poller
