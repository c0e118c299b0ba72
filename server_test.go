package trafficfusion

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *Engine) {
	t.Helper()
	e := newTestEngine(t, testConfig(1000), constantAdapter(0.5, 0.8))
	return NewServer(e, 0, nil), e
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec, body := get(t, s, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["running"])
	assert.Equal(t, float64(2), body["segments"])
}

func TestHandleState(t *testing.T) {
	s, e := newTestServer(t)
	st := stateWithCongestion("S1", 0.45)
	st.Timestamp = time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)
	seedState(e, st)

	rec, body := get(t, s, "/api/state")
	assert.Equal(t, http.StatusOK, rec.Code)
	states := body["states"].([]any)
	require.Len(t, states, 1)
	first := states[0].(map[string]any)
	assert.Equal(t, "S1", first["segmentID"])
	assert.Equal(t, CongestionModerate, first["congestionClass"])

	rec, body = get(t, s, "/api/state?segment=unknown")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["states"], "unknown segment is no data, not an error")
}

func TestHandleAlertsLimitValidation(t *testing.T) {
	s, _ := newTestServer(t)

	rec, _ := get(t, s, "/api/alerts?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = get(t, s, "/api/alerts?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := get(t, s, "/api/alerts?limit=5")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["alerts"])
}

func TestHandleRouteSummary(t *testing.T) {
	s, e := newTestServer(t)
	st := stateWithCongestion("S1", 0.5)
	st.TravelTimeMin = 8
	seedState(e, st)

	rec, _ := get(t, s, "/api/route-summary")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := get(t, s, "/api/route-summary?segments=S1,%20S2")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0.5, body["averageCongestion"].(float64), 1e-9)
	assert.InDelta(t, 8.0, body["totalTravelTimeMin"].(float64), 1e-9)
}

func TestHandlePredictionsAndIncidents(t *testing.T) {
	s, e := newTestServer(t)

	rec, body := get(t, s, "/api/predictions")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["predictions"])

	e.mu.Lock()
	e.predictions["S1"] = predictSegment(stateWithCongestion("S1", 0.4), time.Now())
	e.mu.Unlock()

	rec, body = get(t, s, "/api/predictions?segment=S1")
	assert.Equal(t, http.StatusOK, rec.Code)
	preds := body["predictions"].([]any)
	require.Len(t, preds, 1)

	rec, body = get(t, s, "/api/incidents")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["incidents"])
}
