// Package database manages the TimescaleDB connection pool the gatherer
// writes observations to, and creates the fred_observations table.
package database
