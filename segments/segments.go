package segments

import (
	"fmt"
	"sort"

	"github.com/theoremus-urban-solutions/traffic-fusion/utils"
)

// Coordinate is a WGS84 position.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Segment is a monitored road corridor between two fixed coordinates.
// Segments are immutable after registry construction.
type Segment struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Start       Coordinate `json:"start"`
	End         Coordinate `json:"end"`
	FreeFlowKPH float64    `json:"freeFlowKPH"`
}

// LengthKM returns the great-circle length of the segment.
func (s Segment) LengthKM() float64 {
	return utils.HaversineKM(s.Start.Lat, s.Start.Lon, s.End.Lat, s.End.Lon)
}

// FreeFlowTravelMin returns the travel time in minutes at free-flow speed.
func (s Segment) FreeFlowTravelMin() float64 {
	if s.FreeFlowKPH <= 0 {
		return 0
	}
	return s.LengthKM() / s.FreeFlowKPH * 60
}

// Registry is the static catalog of monitored segments.
type Registry struct {
	byID map[string]Segment
	ids  []string
}

// NewRegistry builds a registry from a segment list. Segment ids must be
// unique and non-empty, and free-flow speeds must be positive.
func NewRegistry(segs []Segment) (*Registry, error) {
	if len(segs) == 0 {
		return nil, fmt.Errorf("segment catalog is empty")
	}
	r := &Registry{byID: make(map[string]Segment, len(segs))}
	for _, s := range segs {
		if s.ID == "" {
			return nil, fmt.Errorf("segment with empty id")
		}
		if _, dup := r.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate segment id %q", s.ID)
		}
		if s.FreeFlowKPH <= 0 {
			return nil, fmt.Errorf("segment %q: free-flow speed must be positive, got %g", s.ID, s.FreeFlowKPH)
		}
		r.byID[s.ID] = s
		r.ids = append(r.ids, s.ID)
	}
	sort.Strings(r.ids)
	return r, nil
}

// Get returns the segment with the given id.
func (r *Registry) Get(id string) (Segment, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// All returns every segment, ordered by id.
func (r *Registry) All() []Segment {
	out := make([]Segment, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of monitored segments.
func (r *Registry) Len() int { return len(r.ids) }

// DefaultCatalog returns the built-in demo catalog so the engine can run
// with zero configuration.
func DefaultCatalog() []Segment {
	return []Segment{
		{
			ID:          "seg-ring-north",
			Name:        "Ring Road North",
			Start:       Coordinate{Lat: 59.9430, Lon: 10.7180},
			End:         Coordinate{Lat: 59.9452, Lon: 10.7705},
			FreeFlowKPH: 70,
		},
		{
			ID:          "seg-ring-east",
			Name:        "Ring Road East",
			Start:       Coordinate{Lat: 59.9452, Lon: 10.7705},
			End:         Coordinate{Lat: 59.9070, Lon: 10.7760},
			FreeFlowKPH: 70,
		},
		{
			ID:          "seg-central-ew",
			Name:        "Central Corridor East-West",
			Start:       Coordinate{Lat: 59.9127, Lon: 10.7230},
			End:         Coordinate{Lat: 59.9111, Lon: 10.7620},
			FreeFlowKPH: 50,
		},
		{
			ID:          "seg-harbour",
			Name:        "Harbour Tunnel Approach",
			Start:       Coordinate{Lat: 59.9050, Lon: 10.7390},
			End:         Coordinate{Lat: 59.9005, Lon: 10.7105},
			FreeFlowKPH: 60,
		},
		{
			ID:          "seg-airport-link",
			Name:        "Airport Link",
			Start:       Coordinate{Lat: 59.9452, Lon: 10.7705},
			End:         Coordinate{Lat: 60.0015, Lon: 10.8780},
			FreeFlowKPH: 90,
		},
	}
}
