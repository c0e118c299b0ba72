// Package segments holds the static catalog of monitored road corridors.
//
// Segments are loaded once at startup (from configuration or the built-in
// default catalog) and are immutable for the lifetime of the process. The
// Registry is safe for unsynchronized concurrent reads.
package segments
