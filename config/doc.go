// Package config handles application configuration loading and validation.
//
// Configuration is loaded from a YAML file and validated using struct tags.
// A malformed configuration (non-positive interval, unknown source id) is
// rejected at load time; the engine refuses to start on a bad config.
package config
