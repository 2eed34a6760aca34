// Package config manages the per-repository stacked configuration.
//
// The configuration lives in .stacked.toml at the jj workspace root. It is
// loaded once per invocation; when the file is missing a default one is
// written and the invocation stops so the user can review it before re-running.
package config
