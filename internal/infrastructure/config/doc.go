// Package config loads and validates GridSense Core configuration.
//
// Configuration comes from a YAML file with environment variable overrides
// (GRIDSENSE_* pattern). Defaults are applied first, then the file, then the
// environment. Validation runs last and refuses unsafe production setups,
// most importantly a missing JWT signing secret.
package config
