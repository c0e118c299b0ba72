// Package utils provides internal utility functions for the traffic-fusion engine.
// This package is not intended to be imported by external code.
//
// It contains:
//   - Great-circle distance calculation
//   - Time formatting helpers
//   - An injectable clock for deterministic tests
package utils
