package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/traffic-fusion/segments"
)

// FeedConfidence is the baseline confidence of the live traffic feed.
const FeedConfidence = 0.9

// Feed fetches per-segment flow readings from a JSON traffic feed endpoint.
// The expected payload for GET {base}/segments/{id}/flow is:
//
//	{"speedKPH": 42.5, "congestionLevel": 0.4, "travelTimeMin": 6.1,
//	 "measuredAt": "2026-08-31T07:15:00Z",
//	 "incidents": ["lane_closed"], "conditions": ["wet_road"]}
//
// congestionLevel and travelTimeMin are optional; missing values are derived
// from the speed and the segment geometry.
type Feed struct {
	baseURL    string
	httpClient *http.Client
}

// NewFeed creates a feed adapter with a bounded request timeout.
func NewFeed(baseURL string, timeout time.Duration) *Feed {
	return &Feed{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the source identifier.
func (f *Feed) Name() string { return "feed" }

type feedPayload struct {
	SpeedKPH        float64  `json:"speedKPH"`
	CongestionLevel *float64 `json:"congestionLevel"`
	TravelTimeMin   *float64 `json:"travelTimeMin"`
	MeasuredAt      string   `json:"measuredAt"`
	Incidents       []string `json:"incidents"`
	Conditions      []string `json:"conditions"`
}

// Fetch requests the current flow reading for one segment.
func (f *Feed) Fetch(ctx context.Context, seg segments.Segment) (Observation, error) {
	url := fmt.Sprintf("%s/segments/%s/flow", f.baseURL, seg.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Observation{}, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Observation{}, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Observation{}, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	var p feedPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Observation{}, fmt.Errorf("decode %s: %w", url, err)
	}
	return f.toObservation(seg, p), nil
}

func (f *Feed) toObservation(seg segments.Segment, p feedPayload) Observation {
	obs := Observation{
		SegmentID:   seg.ID,
		SpeedKPH:    p.SpeedKPH,
		FreeFlowKPH: seg.FreeFlowKPH,
		Confidence:  FeedConfidence,
		Source:      f.Name(),
		Timestamp:   time.Now(),
		Incidents:   p.Incidents,
		Conditions:  p.Conditions,
	}
	if ts, err := time.Parse(time.RFC3339, p.MeasuredAt); err == nil {
		obs.Timestamp = ts
	}
	if p.CongestionLevel != nil {
		obs.CongestionLevel = clamp01(*p.CongestionLevel)
	} else {
		obs.CongestionLevel = congestionFromSpeed(p.SpeedKPH, seg.FreeFlowKPH)
	}
	if p.TravelTimeMin != nil && *p.TravelTimeMin > 0 {
		obs.TravelTimeMin = *p.TravelTimeMin
	} else {
		obs.TravelTimeMin = travelTimeMin(seg, p.SpeedKPH)
	}
	return obs
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
