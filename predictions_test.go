package trafficfusion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionHorizonIntegrity(t *testing.T) {
	st := stateWithCongestion("S1", 0.5)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	p := predictSegment(st, now)
	require.Len(t, p.Congestion, len(predictionHorizonsMin))
	require.Equal(t, predictionHorizonsMin, p.HorizonsMin)
	for i, c := range p.Congestion {
		assert.GreaterOrEqual(t, c, 0.0, "horizon %d", p.HorizonsMin[i])
		assert.LessOrEqual(t, c, 1.0, "horizon %d", p.HorizonsMin[i])
	}
	assert.Equal(t, "S1", p.SegmentID)
	assert.Equal(t, now, p.GeneratedAt)
}

func TestPredictionConstants(t *testing.T) {
	p := predictSegment(stateWithCongestion("S1", 0.4), time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, 0.75, p.Confidence)
	assert.Equal(t, []string{"historical_patterns", "current_conditions", "time_of_day"}, p.Factors)
}

func TestPredictionDiurnalAdjustments(t *testing.T) {
	st := stateWithCongestion("S1", 0.4)

	// 06:30: the 30 and 60 minute horizons land in the 07-09 morning peak,
	// the 120 minute horizon at 08:30 as well; 15 minutes lands at 06:45,
	// a neutral hour.
	now := time.Date(2026, 8, 31, 6, 30, 0, 0, time.UTC)
	p := predictSegment(st, now)
	assert.InDelta(t, 0.4, p.Congestion[0], 1e-9, "06:45 is neutral")
	assert.InDelta(t, 0.4+morningPeakAdjustment, p.Congestion[1], 1e-9, "07:00 is morning peak")
	assert.InDelta(t, 0.4+morningPeakAdjustment, p.Congestion[2], 1e-9, "07:30 is morning peak")
	assert.InDelta(t, 0.4+morningPeakAdjustment, p.Congestion[3], 1e-9, "08:30 is morning peak")
}

func TestPredictionLateNightReduction(t *testing.T) {
	st := stateWithCongestion("S1", 0.4)

	// 23:00: every horizon lands between 23:15 and 01:00.
	now := time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	p := predictSegment(st, now)
	for i := range p.Congestion {
		assert.InDelta(t, 0.4+lateNightAdjustment, p.Congestion[i], 1e-9, "horizon %d", p.HorizonsMin[i])
	}
}

func TestPredictionClampsToUnitRange(t *testing.T) {
	// Standstill plus an evening peak bump must clamp at 1.
	st := stateWithCongestion("S1", 0.95)
	now := time.Date(2026, 8, 31, 16, 0, 0, 0, time.UTC)
	p := predictSegment(st, now)
	for i := range p.Congestion {
		assert.LessOrEqual(t, p.Congestion[i], 1.0)
	}
	assert.Equal(t, 1.0, p.Congestion[0], "16:15 is evening peak, 0.95+0.2 clamps to 1")

	// Free flow late at night clamps at 0.
	st = stateWithCongestion("S1", 0.05)
	now = time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	p = predictSegment(st, now)
	assert.Equal(t, 0.0, p.Congestion[0])
}
