package source

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/theoremus-urban-solutions/traffic-fusion/segments"
	"github.com/theoremus-urban-solutions/traffic-fusion/utils"
)

// SimulatedConfidence is the fixed baseline confidence of the simulator.
// It is deliberately the lowest of the shipped sources so that any live
// reading outweighs it in fusion.
const SimulatedConfidence = 0.5

// Simulated is the fallback adapter: a deterministic time-of-day heuristic
// keyed on segment identity. It never fails, so fusion always has at least
// one observation per cycle when it is enabled.
//
// The output is a pure function of (seed, segment id, hour of day), so tests
// and replays are reproducible. There is no random jitter.
type Simulated struct {
	seed  int64
	clock utils.Clock
}

// NewSimulated creates a simulated adapter with the given seed.
func NewSimulated(seed int64, clock utils.Clock) *Simulated {
	if clock == nil {
		clock = utils.RealClock{}
	}
	return &Simulated{seed: seed, clock: clock}
}

// Name returns the source identifier.
func (s *Simulated) Name() string { return "simulated" }

// Fetch synthesizes an observation from the diurnal congestion curve plus a
// per-segment offset derived from the seed. It never returns an error.
func (s *Simulated) Fetch(_ context.Context, seg segments.Segment) (Observation, error) {
	now := s.clock.Now()
	level := diurnalCongestion(now.Hour()) + s.segmentOffset(seg.ID)
	level = math.Max(0, math.Min(1, level))

	speed := seg.FreeFlowKPH * (1 - level)
	var conditions []string
	if level >= 0.8 {
		conditions = append(conditions, "stop_and_go")
	}

	return Observation{
		SegmentID:       seg.ID,
		SpeedKPH:        speed,
		FreeFlowKPH:     seg.FreeFlowKPH,
		CongestionLevel: level,
		TravelTimeMin:   travelTimeMin(seg, speed),
		Confidence:      SimulatedConfidence,
		Source:          s.Name(),
		Timestamp:       now,
		Conditions:      conditions,
	}, nil
}

// segmentOffset maps (seed, segment id) to a stable offset in [-0.1, 0.1]
// so that segments do not all report identical conditions.
func (s *Simulated) segmentOffset(segmentID string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(segmentID))
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(s.seed >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	return (float64(h.Sum64()%2001)/1000 - 1) * 0.1
}

// diurnalCongestion is the baseline congestion level by hour of day:
// elevated during the morning and evening peaks, low overnight.
func diurnalCongestion(hour int) float64 {
	switch {
	case hour >= 7 && hour < 9:
		return 0.65
	case hour >= 9 && hour < 15:
		return 0.35
	case hour >= 15 && hour < 18:
		return 0.7
	case hour >= 18 && hour < 22:
		return 0.3
	default:
		return 0.1
	}
}
