// Package config loads the xpcrash configuration from defaults, an optional
// YAML file and XPCRASH_* environment variables, and watches the file for
// live changes.
package config
