// Package config loads runtime configuration from environment variables and
// builds the database handles the engines and projections run on.
package config
