package trafficfusion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/theoremus-urban-solutions/traffic-fusion/segments"
	"github.com/theoremus-urban-solutions/traffic-fusion/source"
)

// collectObservations fans out to every adapter concurrently with a bounded
// per-call timeout and returns whatever succeeded. A slow or failing adapter
// degrades coverage but never blocks the cycle beyond its own timeout.
func collectObservations(ctx context.Context, adapters []source.Adapter, seg segments.Segment, timeout time.Duration, logger *slog.Logger) []source.Observation {
	var (
		mu  sync.Mutex
		out []source.Observation
		wg  sync.WaitGroup
	)
	for _, a := range adapters {
		wg.Add(1)
		go func(a source.Adapter) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			obs, err := a.Fetch(callCtx, seg)
			if err != nil {
				logger.Debug("source fetch failed", "source", a.Name(), "segment", seg.ID, "error", err)
				return
			}
			mu.Lock()
			out = append(out, obs)
			mu.Unlock()
		}(a)
	}
	wg.Wait()
	return out
}

// fuseObservations reconciles the observations for one segment into a single
// fused state. Numeric fields are the confidence-weighted mean of the
// contributing observations:
//
//	fused_x = sum(x_i * conf_i) / sum(conf_i)
//
// Fused confidence is the plain average of the contributing confidences. The
// highest-confidence observation seeds the non-numeric fields; incident and
// condition lists are unioned across all observations. Zero observations
// return ok=false and the caller retains the prior state.
func fuseObservations(obs []source.Observation) (FusedState, bool) {
	if len(obs) == 0 {
		return FusedState{}, false
	}

	speeds := make([]float64, len(obs))
	levels := make([]float64, len(obs))
	travel := make([]float64, len(obs))
	weights := make([]float64, len(obs))

	best := 0
	latest := obs[0].Timestamp
	for i, o := range obs {
		speeds[i] = o.SpeedKPH
		levels[i] = o.CongestionLevel
		travel[i] = o.TravelTimeMin
		weights[i] = o.Confidence
		if o.Confidence > obs[best].Confidence {
			best = i
		}
		if o.Timestamp.After(latest) {
			latest = o.Timestamp
		}
	}

	st := FusedState{
		SegmentID:       obs[0].SegmentID,
		SpeedKPH:        nonNegative(weightedMean(speeds, weights)),
		FreeFlowKPH:     nonNegative(obs[best].FreeFlowKPH),
		CongestionLevel: clamp01(weightedMean(levels, weights)),
		TravelTimeMin:   nonNegative(weightedMean(travel, weights)),
		Confidence:      clamp01(stat.Mean(weights, nil)),
		Source:          FusedSource,
		Timestamp:       latest,
		Incidents:       append([]string(nil), obs[best].Incidents...),
		Conditions:      append([]string(nil), obs[best].Conditions...),
	}
	st.CongestionClass = ClassifyCongestion(st.CongestionLevel)

	for i, o := range obs {
		if i == best {
			continue
		}
		st.Incidents = unionStrings(st.Incidents, o.Incidents)
		st.Conditions = unionStrings(st.Conditions, o.Conditions)
	}
	return st, true
}

// weightedMean guards stat.Mean against an all-zero weight vector, which
// can happen when every contributing source reports zero confidence.
func weightedMean(values, weights []float64) float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return stat.Mean(values, nil)
	}
	return stat.Mean(values, weights)
}

// unionStrings appends the members of add that base does not already
// contain, preserving order.
func unionStrings(base, add []string) []string {
	for _, v := range add {
		seen := false
		for _, b := range base {
			if b == v {
				seen = true
				break
			}
		}
		if !seen {
			base = append(base, v)
		}
	}
	return base
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
