// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Every field is optional; LoadWithDefaults fills the gaps with the constants in defaults.go.
package config
