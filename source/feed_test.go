package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/segments/seg-1/flow", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"speedKPH": 35.0,
			"congestionLevel": 0.5,
			"travelTimeMin": 7.5,
			"measuredAt": "2026-08-31T07:15:00Z",
			"incidents": ["lane_closed"],
			"conditions": ["wet_road"]
		}`))
	}))
	defer srv.Close()

	f := NewFeed(srv.URL, time.Second)
	obs, err := f.Fetch(context.Background(), simTestSegment())
	require.NoError(t, err)

	assert.Equal(t, "feed", obs.Source)
	assert.Equal(t, 35.0, obs.SpeedKPH)
	assert.Equal(t, 0.5, obs.CongestionLevel)
	assert.Equal(t, 7.5, obs.TravelTimeMin)
	assert.Equal(t, FeedConfidence, obs.Confidence)
	assert.Equal(t, time.Date(2026, 8, 31, 7, 15, 0, 0, time.UTC), obs.Timestamp.UTC())
	assert.Equal(t, []string{"lane_closed"}, obs.Incidents)
	assert.Equal(t, []string{"wet_road"}, obs.Conditions)
}

func TestFeedDerivesMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"speedKPH": 35.0}`))
	}))
	defer srv.Close()

	f := NewFeed(srv.URL, time.Second)
	obs, err := f.Fetch(context.Background(), simTestSegment())
	require.NoError(t, err)

	// 35 km/h against a 70 km/h free flow is level 0.5.
	assert.InDelta(t, 0.5, obs.CongestionLevel, 1e-9)
	assert.Greater(t, obs.TravelTimeMin, 0.0)
}

func TestFeedErrors(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		f := NewFeed(srv.URL, time.Second)
		_, err := f.Fetch(context.Background(), simTestSegment())
		assert.ErrorContains(t, err, "HTTP 502")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		f := NewFeed(srv.URL, time.Second)
		_, err := f.Fetch(context.Background(), simTestSegment())
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		f := NewFeed(srv.URL, 20*time.Millisecond)
		_, err := f.Fetch(context.Background(), simTestSegment())
		assert.Error(t, err)
	})

	t.Run("context cancelled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		f := NewFeed(srv.URL, time.Second)
		_, err := f.Fetch(ctx, simTestSegment())
		assert.Error(t, err)
	})
}
