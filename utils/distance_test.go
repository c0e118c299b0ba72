package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKM(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expectedKM             float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 59.9139, lon1: 10.7522,
			lat2: 59.9139, lon2: 10.7522,
			expectedKM: 0, tolerance: 1e-9,
		},
		{
			name: "oslo to bergen",
			lat1: 59.9139, lon1: 10.7522,
			lat2: 60.3913, lon2: 5.3221,
			expectedKM: 305, tolerance: 5,
		},
		{
			name: "one degree of latitude",
			lat1: 0, lon1: 0,
			lat2: 1, lon2: 0,
			expectedKM: 111.2, tolerance: 0.5,
		},
		{
			name: "across the equator",
			lat1: -0.5, lon1: 10,
			lat2: 0.5, lon2: 10,
			expectedKM: 111.2, tolerance: 0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKM(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expectedKM, got, tt.tolerance)
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := HaversineKM(59.91, 10.75, 60.39, 5.32)
	b := HaversineKM(60.39, 5.32, 59.91, 10.75)
	assert.InDelta(t, a, b, 1e-9)
}

func TestHaversineMeters(t *testing.T) {
	km := HaversineKM(59.91, 10.75, 59.92, 10.75)
	m := HaversineMeters(59.91, 10.75, 59.92, 10.75)
	assert.InDelta(t, km*1000, m, 1e-6)
}
