// Package config loads fred-data configuration.
//
// Configuration is read from a YAML file in which ${VAR} references are
// expanded from the environment. FRED_* environment variables then override
// individual fields (for example FRED_API_BASE_URL or FRED_FETCH_SERIES=GDP,UNRATE),
// defaults fill anything left unset, and Validate checks the result.
package config
