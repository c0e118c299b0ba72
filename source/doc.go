// Package source defines the data source adapter contract and the concrete
// adapters shipped with the engine.
//
// An Adapter produces one Observation per segment per fusion cycle, or fails.
// Failures are never fatal: the fusion engine tolerates any subset of
// adapters failing and falls back on whatever succeeded. The simulated
// adapter always succeeds, so fusion never starves entirely when live
// sources are down.
package source
