package trafficfusion

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/traffic-fusion/utils"
)

type healthResponse struct {
	Status          string `json:"status"`
	Running         bool   `json:"running"`
	LatestFusionISO string `json:"latest_fusion"`
	Segments        int    `json:"segments"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	last := s.engine.LastFusionAt()
	resp := healthResponse{
		Status:   "ok",
		Running:  s.engine.Running(),
		Segments: s.engine.registry.Len(),
	}
	if !last.IsZero() {
		resp.LatestFusionISO = utils.Iso8601FromTime(last)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	states := s.engine.State(r.URL.Query().Get("segment"))
	writeJSON(w, http.StatusOK, map[string]any{
		"responseTimestamp": utils.Iso8601Now(),
		"states":            states,
	})
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	preds := s.engine.Predictions(r.URL.Query().Get("segment"))
	writeJSON(w, http.StatusOK, map[string]any{
		"responseTimestamp": utils.Iso8601Now(),
		"predictions":       preds,
	})
}

func (s *Server) handleIncidents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"responseTimestamp": utils.Iso8601Now(),
		"incidents":         s.engine.ActiveIncidents(),
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"responseTimestamp": utils.Iso8601Now(),
		"alerts":            s.engine.RecentAlerts(limit),
	})
}

func (s *Server) handleRouteSummary(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("segments")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "segments query parameter is required")
		return
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "segments query parameter is empty")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.RouteSummary(ids))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
