package trafficfusion

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/traffic-fusion/segments"
	"github.com/theoremus-urban-solutions/traffic-fusion/utils"
)

const (
	// incidentCongestionThreshold and incidentConfidenceThreshold gate
	// incident inference: only sustained, trustworthy high congestion
	// creates an incident.
	incidentCongestionThreshold = 0.8
	incidentConfidenceThreshold = 0.7

	// incidentDedupRadiusM suppresses a new incident when an existing one
	// lies within this distance of the segment start.
	incidentDedupRadiusM = 1000.0

	// incidentImpactRadiusM is the fixed impact radius on new incidents.
	incidentImpactRadiusM = 500.0
)

// incidentDetector infers incidents from fused state. Incidents are created
// once and never mutated; there is no automatic expiry in the base design,
// so the set only grows until process restart. Not safe for concurrent use;
// the engine serializes access under its state lock.
type incidentDetector struct {
	clock     utils.Clock
	incidents []Incident
	nextID    func() string
}

func newIncidentDetector(clock utils.Clock) *incidentDetector {
	return &incidentDetector{
		clock:  clock,
		nextID: func() string { return uuid.NewString() },
	}
}

// scan inspects every segment's fused state and returns the incidents
// created this pass. A segment qualifies when congestion exceeds 0.8 with
// confidence above 0.7 and no existing incident lies within the dedup
// radius of its start coordinate.
func (d *incidentDetector) scan(states map[string]FusedState, reg *segments.Registry) []Incident {
	var created []Incident
	for _, seg := range reg.All() {
		st, ok := states[seg.ID]
		if !ok {
			continue
		}
		if st.CongestionLevel <= incidentCongestionThreshold || st.Confidence <= incidentConfidenceThreshold {
			continue
		}
		if d.nearbyExists(seg.Start) {
			continue
		}
		created = append(created, d.create(seg, st))
	}
	return created
}

func (d *incidentDetector) nearbyExists(at segments.Coordinate) bool {
	for _, inc := range d.incidents {
		dist := utils.HaversineMeters(at.Lat, at.Lon, inc.Location.Lat, inc.Location.Lon)
		if dist <= incidentDedupRadiusM {
			return true
		}
	}
	return false
}

func (d *incidentDetector) create(seg segments.Segment, st FusedState) Incident {
	severity := IncidentSeverityHigh
	if st.CongestionLevel > 0.9 {
		severity = IncidentSeverityCritical
	}
	inc := Incident{
		ID:        d.nextID(),
		SegmentID: seg.ID,
		// Sustained standstill without a known cause is conservatively
		// reported as an accident until a source says otherwise.
		Type:     IncidentTypeAccident,
		Severity: severity,
		Description: fmt.Sprintf("Sustained %s congestion on %s (level %.2f)",
			ClassifyCongestion(st.CongestionLevel), seg.Name, st.CongestionLevel),
		Location:      seg.Start,
		StartedAt:     d.clock.Now(),
		ImpactRadiusM: incidentImpactRadiusM,
		DelayMin:      math.Round(st.TravelTimeMin * 0.5),
	}
	d.incidents = append(d.incidents, inc)
	return inc
}

// active returns a copy of every incident since engine start.
func (d *incidentDetector) active() []Incident {
	out := make([]Incident, len(d.incidents))
	copy(out, d.incidents)
	return out
}
