// Package config loads the vecseg CLI configuration from an optional file
// and VECSEG_* environment variables.
package config
