// Package config loads, normalizes, and validates the whisperxsubs TOML
// configuration.
//
// Values come from an explicit --config path, ~/.config/whisperxsubs/config.toml
// or ./whisperxsubs.toml, in that order, layered over Default. Translation
// credentials fall back to environment variables. Normalization expands
// paths and canonicalizes language codes before Validate runs, so callers
// always see a consistent configuration.
package config
