// Package trafficfusion implements the real-time traffic condition fusion
// and alerting engine behind the transit operations dashboard.
//
// The engine polls every enabled data source per monitored road segment,
// reconciles disagreeing readings into one fused state per segment using a
// confidence-weighted mean, classifies congestion, infers incidents from
// sustained high congestion, forecasts short-horizon congestion with a
// diurnal heuristic, and emits deduplicated alerts.
//
// An Engine is explicitly constructed and owned by whichever layer starts
// it; there is no package-level instance. All reads return synchronized
// snapshot copies, and lifecycle events fan out to subscribers over a
// non-blocking event bus, so a slow dashboard never stalls an engine tick.
//
// State is held in memory only and is reconstructible from scratch: a
// process restart loses nothing that the next few fusion cycles will not
// rebuild.
package trafficfusion
