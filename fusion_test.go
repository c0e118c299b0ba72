package trafficfusion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/traffic-fusion/source"
)

func obsWith(speed, conf float64) source.Observation {
	return source.Observation{
		SegmentID:       "seg-1",
		SpeedKPH:        speed,
		FreeFlowKPH:     70,
		CongestionLevel: 1 - speed/70,
		TravelTimeMin:   60 / speed,
		Confidence:      conf,
		Source:          "test",
		Timestamp:       time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC),
	}
}

func TestFuseConfidenceWeighting(t *testing.T) {
	a := obsWith(40, 0.9)
	b := obsWith(20, 0.3)

	st, ok := fuseObservations([]source.Observation{a, b})
	require.True(t, ok)

	// (40*0.9 + 20*0.3) / (0.9+0.3) = 35.0
	assert.InDelta(t, 35.0, st.SpeedKPH, 1e-9)

	wantLevel := (a.CongestionLevel*0.9 + b.CongestionLevel*0.3) / 1.2
	assert.InDelta(t, wantLevel, st.CongestionLevel, 1e-9)

	wantTravel := (a.TravelTimeMin*0.9 + b.TravelTimeMin*0.3) / 1.2
	assert.InDelta(t, wantTravel, st.TravelTimeMin, 1e-9)

	// Fused confidence is the plain average of contributors.
	assert.InDelta(t, 0.6, st.Confidence, 1e-9)
	assert.Equal(t, FusedSource, st.Source)
}

func TestFuseSingleSourceIdentity(t *testing.T) {
	o := obsWith(42, 0.8)
	o.Incidents = []string{"lane_closed"}
	o.Conditions = []string{"wet_road"}

	st, ok := fuseObservations([]source.Observation{o})
	require.True(t, ok)

	assert.InDelta(t, o.SpeedKPH, st.SpeedKPH, 1e-9)
	assert.InDelta(t, o.CongestionLevel, st.CongestionLevel, 1e-9)
	assert.InDelta(t, o.TravelTimeMin, st.TravelTimeMin, 1e-9)
	assert.InDelta(t, o.Confidence, st.Confidence, 1e-9)
	assert.Equal(t, []string{"lane_closed"}, st.Incidents)
	assert.Equal(t, []string{"wet_road"}, st.Conditions)
	assert.Equal(t, FusedSource, st.Source)
}

func TestFuseZeroSources(t *testing.T) {
	_, ok := fuseObservations(nil)
	assert.False(t, ok)
}

func TestFuseUnionsListsFromAllObservations(t *testing.T) {
	a := obsWith(40, 0.9)
	a.Incidents = []string{"lane_closed"}
	a.Conditions = []string{"wet_road"}
	b := obsWith(30, 0.4)
	b.Incidents = []string{"lane_closed", "debris"}
	b.Conditions = []string{"fog"}

	st, ok := fuseObservations([]source.Observation{b, a})
	require.True(t, ok)

	// The highest-confidence observation seeds the lists; the rest are
	// unioned in without duplicates.
	assert.Equal(t, []string{"lane_closed", "debris"}, st.Incidents)
	assert.Equal(t, []string{"wet_road", "fog"}, st.Conditions)
}

func TestFuseUsesLatestTimestamp(t *testing.T) {
	a := obsWith(40, 0.9)
	b := obsWith(20, 0.3)
	b.Timestamp = a.Timestamp.Add(30 * time.Second)

	st, ok := fuseObservations([]source.Observation{a, b})
	require.True(t, ok)
	assert.Equal(t, b.Timestamp, st.Timestamp)
}

func TestFuseClampsInvariants(t *testing.T) {
	a := obsWith(40, 0.9)
	a.CongestionLevel = 1.7
	b := obsWith(20, 0.6)
	b.CongestionLevel = 1.2

	st, ok := fuseObservations([]source.Observation{a, b})
	require.True(t, ok)
	assert.LessOrEqual(t, st.CongestionLevel, 1.0)
	assert.GreaterOrEqual(t, st.CongestionLevel, 0.0)
	assert.GreaterOrEqual(t, st.SpeedKPH, 0.0)
	assert.GreaterOrEqual(t, st.TravelTimeMin, 0.0)
}

func TestFuseZeroConfidenceFallsBackToPlainMean(t *testing.T) {
	a := obsWith(40, 0)
	b := obsWith(20, 0)

	st, ok := fuseObservations([]source.Observation{a, b})
	require.True(t, ok)
	assert.InDelta(t, 30.0, st.SpeedKPH, 1e-9)
	assert.InDelta(t, 0.0, st.Confidence, 1e-9)
}
