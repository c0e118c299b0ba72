package trafficfusion

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/traffic-fusion/segments"
	"github.com/theoremus-urban-solutions/traffic-fusion/utils"
)

const (
	// congestionAlertThreshold is the fused congestion level above which a
	// congestion alert is raised.
	congestionAlertThreshold = 0.7

	// alertDedupWindow suppresses repeat congestion alerts for the same
	// segment within this window.
	alertDedupWindow = 5 * time.Minute

	// alertHistoryCap bounds the retained alert history; older alerts are
	// evicted FIFO.
	alertHistoryCap = 50
)

// alertManager raises and deduplicates alerts and keeps the bounded history,
// most recent first. It is not safe for concurrent use; the engine
// serializes access under its state lock.
type alertManager struct {
	clock  utils.Clock
	alerts []Alert
	cap    int
	dedup  time.Duration
	nextID func() string
}

func newAlertManager(clock utils.Clock) *alertManager {
	return &alertManager{
		clock:  clock,
		cap:    alertHistoryCap,
		dedup:  alertDedupWindow,
		nextID: func() string { return uuid.NewString() },
	}
}

// raiseCongestion synthesizes a congestion alert for the segment unless an
// alert of the same type for the same segment exists within the dedup
// window. Returns ok=false when suppressed.
func (m *alertManager) raiseCongestion(seg segments.Segment, st FusedState) (Alert, bool) {
	now := m.clock.Now()
	for _, a := range m.alerts {
		if a.Type != AlertTypeCongestion {
			continue
		}
		if !containsString(a.SegmentIDs, seg.ID) {
			continue
		}
		if now.Sub(a.Timestamp) < m.dedup {
			return Alert{}, false
		}
	}

	severity := AlertSeverityWarning
	if st.CongestionLevel > 0.9 {
		severity = AlertSeverityCritical
	}
	alert := Alert{
		ID:       m.nextID(),
		Type:     AlertTypeCongestion,
		Severity: severity,
		Title:    fmt.Sprintf("%s congestion on %s", ClassifyCongestion(st.CongestionLevel), seg.Name),
		Message: fmt.Sprintf("Current speed %.0f km/h against a free flow of %.0f km/h (level %.2f)",
			st.SpeedKPH, st.FreeFlowKPH, st.CongestionLevel),
		SegmentIDs:   []string{seg.ID},
		Location:     seg.Start,
		Timestamp:    now,
		EstimatedMin: st.TravelTimeMin,
	}
	m.record(alert)
	return alert, true
}

// raiseIncident produces one alert per new incident, with no dedup beyond
// the incident's own spatial dedup.
func (m *alertManager) raiseIncident(seg segments.Segment, inc Incident) Alert {
	severity := AlertSeverityWarning
	if inc.Severity == IncidentSeverityCritical {
		severity = AlertSeverityCritical
	}
	alert := Alert{
		ID:           m.nextID(),
		Type:         AlertTypeIncident,
		Severity:     severity,
		Title:        fmt.Sprintf("Probable %s on %s", inc.Type, seg.Name),
		Message:      inc.Description,
		SegmentIDs:   []string{seg.ID},
		Location:     inc.Location,
		Timestamp:    m.clock.Now(),
		EstimatedMin: inc.DelayMin,
	}
	m.record(alert)
	return alert
}

// record prepends the alert and evicts beyond capacity.
func (m *alertManager) record(a Alert) {
	m.alerts = append([]Alert{a}, m.alerts...)
	if len(m.alerts) > m.cap {
		m.alerts = m.alerts[:m.cap]
	}
}

// recent returns a copy of the most recent alerts, newest first. A
// non-positive limit returns the whole history.
func (m *alertManager) recent(limit int) []Alert {
	n := len(m.alerts)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Alert, n)
	copy(out, m.alerts[:n])
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
