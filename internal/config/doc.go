// Package config loads, validates and hot-reloads the daemon's YAML
// configuration. Missing fields are filled with defaults; a reload that
// fails to parse keeps the previous configuration active.
package config
