package trafficfusion

import (
	"time"
)

// Prediction horizons in minutes ahead.
var predictionHorizonsMin = []int{15, 30, 60, 120}

// predictionConfidence is fixed: the generator is a documented heuristic
// baseline, not a trained model, and claims no per-segment skill.
const predictionConfidence = 0.75

// predictionFactors is the static label set describing what the heuristic
// takes into account.
var predictionFactors = []string{"historical_patterns", "current_conditions", "time_of_day"}

// Diurnal adjustments applied to the current congestion level depending on
// the hour of day a horizon lands in.
const (
	morningPeakAdjustment = 0.15
	eveningPeakAdjustment = 0.2
	lateNightAdjustment   = -0.2
)

// predictSegment projects the segment's current congestion onto the fixed
// horizons. Each horizon gets an additive adjustment for the hour of day it
// lands in, clamped to [0,1]. The prediction fully replaces any prior one.
func predictSegment(st FusedState, now time.Time) Prediction {
	congestion := make([]float64, len(predictionHorizonsMin))
	for i, m := range predictionHorizonsMin {
		at := now.Add(time.Duration(m) * time.Minute)
		congestion[i] = clamp01(st.CongestionLevel + diurnalAdjustment(at.Hour()))
	}
	return Prediction{
		SegmentID:   st.SegmentID,
		HorizonsMin: append([]int(nil), predictionHorizonsMin...),
		Congestion:  congestion,
		Confidence:  predictionConfidence,
		Factors:     append([]string(nil), predictionFactors...),
		GeneratedAt: now,
	}
}

// diurnalAdjustment returns the additive congestion adjustment for an hour
// of day: morning and evening peaks push congestion up, late night pulls it
// down, and shoulder hours are neutral.
func diurnalAdjustment(hour int) float64 {
	switch {
	case hour >= 7 && hour < 9:
		return morningPeakAdjustment
	case hour >= 16 && hour < 19:
		return eveningPeakAdjustment
	case hour >= 22 || hour < 5:
		return lateNightAdjustment
	default:
		return 0
	}
}
