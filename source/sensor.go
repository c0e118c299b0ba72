package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/traffic-fusion/segments"
)

// Sensor fetches aggregated roadside sensor readings from a sensor gateway.
// GET {base}/sensors?segment={id} returns:
//
//	{"readings": [{"speedKPH": 38.0}, {"speedKPH": 41.5}],
//	 "conditions": ["wet_road"]}
//
// Individual detectors disagree, so the adapter averages the readings and
// derives its confidence from the sample count: more detectors reporting
// means a more trustworthy aggregate.
type Sensor struct {
	baseURL    string
	httpClient *http.Client
}

// NewSensor creates a sensor gateway adapter with a bounded request timeout.
func NewSensor(baseURL string, timeout time.Duration) *Sensor {
	return &Sensor{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the source identifier.
func (s *Sensor) Name() string { return "sensor" }

type sensorPayload struct {
	Readings []struct {
		SpeedKPH float64 `json:"speedKPH"`
	} `json:"readings"`
	Conditions []string `json:"conditions"`
}

// Fetch requests the current sensor aggregate for one segment. A segment
// with no reporting detectors is a failed fetch, not a zero-speed reading.
func (s *Sensor) Fetch(ctx context.Context, seg segments.Segment) (Observation, error) {
	url := fmt.Sprintf("%s/sensors?segment=%s", s.baseURL, seg.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Observation{}, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Observation{}, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Observation{}, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	var p sensorPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Observation{}, fmt.Errorf("decode %s: %w", url, err)
	}
	if len(p.Readings) == 0 {
		return Observation{}, fmt.Errorf("no sensor readings for segment %s", seg.ID)
	}

	var sum float64
	for _, r := range p.Readings {
		sum += r.SpeedKPH
	}
	speed := sum / float64(len(p.Readings))

	return Observation{
		SegmentID:       seg.ID,
		SpeedKPH:        speed,
		FreeFlowKPH:     seg.FreeFlowKPH,
		CongestionLevel: congestionFromSpeed(speed, seg.FreeFlowKPH),
		TravelTimeMin:   travelTimeMin(seg, speed),
		Confidence:      sensorConfidence(len(p.Readings)),
		Source:          s.Name(),
		Timestamp:       time.Now(),
		Conditions:      p.Conditions,
	}, nil
}

// sensorConfidence grows with the number of reporting detectors,
// from 0.55 for a single detector up to a cap of 0.85.
func sensorConfidence(samples int) float64 {
	c := 0.5 + 0.05*float64(samples)
	if c > 0.85 {
		c = 0.85
	}
	return c
}
