// Package config loads relay settings.
//
// Values are layered: built-in defaults, then an optional YAML file (with
// ${VAR} expansion), then environment variables. Command-line flags are
// applied on top by the caller before Validate.
package config
