package trafficfusion

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// State returns a snapshot of the fused state for one segment, or for all
// segments (ordered by id) when segmentID is empty. The returned values are
// copies; mutating them does not touch engine state.
func (e *Engine) State(segmentID string) []FusedState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if segmentID != "" {
		st, ok := e.states[segmentID]
		if !ok {
			return nil
		}
		return []FusedState{cloneState(st)}
	}
	out := make([]FusedState, 0, len(e.states))
	for _, st := range e.states {
		out = append(out, cloneState(st))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SegmentID < out[j].SegmentID })
	return out
}

// Predictions returns a snapshot of the current predictions, one segment or
// all segments ordered by id.
func (e *Engine) Predictions(segmentID string) []Prediction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if segmentID != "" {
		p, ok := e.predictions[segmentID]
		if !ok {
			return nil
		}
		return []Prediction{clonePrediction(p)}
	}
	out := make([]Prediction, 0, len(e.predictions))
	for _, p := range e.predictions {
		out = append(out, clonePrediction(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SegmentID < out[j].SegmentID })
	return out
}

// ActiveIncidents returns every incident inferred since engine start.
// Incidents never expire in the base design.
func (e *Engine) ActiveIncidents() []Incident {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.detector.active()
}

// RecentAlerts returns the most recent alerts, newest first. A non-positive
// limit returns the full bounded history.
func (e *Engine) RecentAlerts(limit int) []Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alerts.recent(limit)
}

// RouteSummary aggregates current conditions over a caller-specified path.
// Segments without fused state contribute nothing to the averages.
func (e *Engine) RouteSummary(segmentIDs []string) RouteSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	onRoute := make(map[string]struct{}, len(segmentIDs))
	var levels []float64
	summary := RouteSummary{SegmentIDs: append([]string(nil), segmentIDs...)}
	for _, id := range segmentIDs {
		onRoute[id] = struct{}{}
		if st, ok := e.states[id]; ok {
			levels = append(levels, st.CongestionLevel)
			summary.TotalTravelTimeMin += st.TravelTimeMin
		}
	}
	if len(levels) > 0 {
		summary.AverageCongestion = stat.Mean(levels, nil)
	}
	for _, inc := range e.detector.incidents {
		if _, ok := onRoute[inc.SegmentID]; ok {
			summary.IncidentCount++
		}
	}
	for _, a := range e.alerts.alerts {
		for _, id := range a.SegmentIDs {
			if _, ok := onRoute[id]; ok {
				summary.AlertCount++
				break
			}
		}
	}
	return summary
}

// LastFusionAt returns the completion time of the most recent fusion cycle,
// zero before the first one.
func (e *Engine) LastFusionAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastFusion
}

// Subscribe registers for the named engine events; with no types it
// receives everything. The subscriber owns draining its channel; events
// beyond its buffer are dropped, never queued against the engine.
func (e *Engine) Subscribe(types ...EventType) *Subscription {
	return e.bus.subscribe(types...)
}

// Unsubscribe removes a subscription and closes its channel.
func (e *Engine) Unsubscribe(sub *Subscription) {
	e.bus.unsubscribe(sub)
}

func cloneState(st FusedState) FusedState {
	st.Incidents = append([]string(nil), st.Incidents...)
	st.Conditions = append([]string(nil), st.Conditions...)
	return st
}

func clonePrediction(p Prediction) Prediction {
	p.HorizonsMin = append([]int(nil), p.HorizonsMin...)
	p.Congestion = append([]float64(nil), p.Congestion...)
	p.Factors = append([]string(nil), p.Factors...)
	return p
}
