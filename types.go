package trafficfusion

import (
	"time"

	"github.com/theoremus-urban-solutions/traffic-fusion/segments"
)

// FusedSource is the sentinel source tag on every FusedState, marking it as
// the product of fusion rather than any single adapter.
const FusedSource = "fused"

// FusedState is the reconciled traffic condition for one segment. It is
// overwritten wholesale on each fusion cycle; the Timestamp is the staleness
// signal for consumers when a cycle yields no observations.
type FusedState struct {
	SegmentID       string    `json:"segmentID"`
	SpeedKPH        float64   `json:"speedKPH"`
	FreeFlowKPH     float64   `json:"freeFlowKPH"`
	CongestionLevel float64   `json:"congestionLevel"`
	CongestionClass string    `json:"congestionClass"`
	TravelTimeMin   float64   `json:"travelTimeMin"`
	Confidence      float64   `json:"confidence"`
	Source          string    `json:"source"`
	Timestamp       time.Time `json:"timestamp"`
	Incidents       []string  `json:"incidents,omitempty"`
	Conditions      []string  `json:"conditions,omitempty"`
}

// Incident severity and type values.
const (
	IncidentTypeAccident = "accident"

	IncidentSeverityHigh     = "high"
	IncidentSeverityCritical = "critical"
)

// Incident is an inferred real-world disruption on a segment. Incidents are
// never mutated after creation and, in the base design, never expire.
type Incident struct {
	ID            string              `json:"id"`
	SegmentID     string              `json:"segmentID"`
	Type          string              `json:"type"`
	Severity      string              `json:"severity"`
	Description   string              `json:"description"`
	Location      segments.Coordinate `json:"location"`
	StartedAt     time.Time           `json:"startedAt"`
	EstimatedEnd  *time.Time          `json:"estimatedEnd,omitempty"`
	ImpactRadiusM float64             `json:"impactRadiusM"`
	DelayMin      float64             `json:"delayMin"`
}

// Alert types and severities.
const (
	AlertTypeCongestion   = "congestion"
	AlertTypeIncident     = "incident"
	AlertTypeRouteBlocked = "route_blocked"
	AlertTypeDelay        = "delay"

	AlertSeverityInfo     = "info"
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"
)

// Alert is a notification-worthy condition derived from fused state or an
// incident.
type Alert struct {
	ID           string              `json:"id"`
	Type         string              `json:"type"`
	Severity     string              `json:"severity"`
	Title        string              `json:"title"`
	Message      string              `json:"message"`
	SegmentIDs   []string            `json:"segmentIDs"`
	Location     segments.Coordinate `json:"location"`
	Timestamp    time.Time           `json:"timestamp"`
	EstimatedMin float64             `json:"estimatedMin,omitempty"`
}

// Prediction is the forecast congestion for one segment at fixed future
// horizons. Each generation cycle fully replaces the previous prediction.
type Prediction struct {
	SegmentID   string    `json:"segmentID"`
	HorizonsMin []int     `json:"horizonsMin"`
	Congestion  []float64 `json:"congestion"`
	Confidence  float64   `json:"confidence"`
	Factors     []string  `json:"factors"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// RouteSummary aggregates current conditions over a caller-specified path.
type RouteSummary struct {
	SegmentIDs         []string `json:"segmentIDs"`
	AverageCongestion  float64  `json:"averageCongestion"`
	TotalTravelTimeMin float64  `json:"totalTravelTimeMin"`
	IncidentCount      int      `json:"incidentCount"`
	AlertCount         int      `json:"alertCount"`
}

// EventType names an engine lifecycle event.
type EventType string

// Engine lifecycle events published on the bus.
const (
	EventStateUpdated       EventType = "state_updated"
	EventPredictionsUpdated EventType = "predictions_updated"
	EventAlertCreated       EventType = "alert_created"
)

// Event is one engine lifecycle notification. Count carries the number of
// segments updated for state/prediction events; Alert is set for
// alert_created events.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count,omitempty"`
	Alert     *Alert    `json:"alert,omitempty"`
}
