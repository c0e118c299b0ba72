package source

import (
	"context"
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/traffic-fusion/config"
	"github.com/theoremus-urban-solutions/traffic-fusion/segments"
	"github.com/theoremus-urban-solutions/traffic-fusion/utils"
)

// Observation is one source's reading of a segment's traffic condition at a
// point in time. Observations are consumed immediately by fusion and not
// retained individually.
type Observation struct {
	SegmentID       string    `json:"segmentID"`
	SpeedKPH        float64   `json:"speedKPH"`
	FreeFlowKPH     float64   `json:"freeFlowKPH"`
	CongestionLevel float64   `json:"congestionLevel"`
	TravelTimeMin   float64   `json:"travelTimeMin"`
	Confidence      float64   `json:"confidence"`
	Source          string    `json:"source"`
	Timestamp       time.Time `json:"timestamp"`
	Incidents       []string  `json:"incidents,omitempty"`
	Conditions      []string  `json:"conditions,omitempty"`
}

// Adapter is the capability contract for one upstream data source.
type Adapter interface {
	// Name returns the source identifier recorded on observations.
	Name() string

	// Fetch produces an observation for the segment or fails. Implementations
	// must honor ctx cancellation and bound their own I/O; an error means "no
	// observation from this source for this cycle", never a fatal condition.
	Fetch(ctx context.Context, seg segments.Segment) (Observation, error)
}

// Build constructs the adapters named in cfg.Enabled, in order. An unknown
// identifier or a missing endpoint is a construction-time error.
func Build(cfg config.SourcesConfig, clock utils.Clock) ([]Adapter, error) {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if clock == nil {
		clock = utils.RealClock{}
	}
	adapters := make([]Adapter, 0, len(cfg.Enabled))
	for _, name := range cfg.Enabled {
		switch name {
		case "feed":
			if cfg.FeedURL == "" {
				return nil, fmt.Errorf("source %q enabled but feedURL is not set", name)
			}
			adapters = append(adapters, NewFeed(cfg.FeedURL, timeout))
		case "sensor":
			if cfg.SensorURL == "" {
				return nil, fmt.Errorf("source %q enabled but sensorURL is not set", name)
			}
			adapters = append(adapters, NewSensor(cfg.SensorURL, timeout))
		case "simulated":
			adapters = append(adapters, NewSimulated(cfg.SimulatorSeed, clock))
		default:
			return nil, fmt.Errorf("unknown source identifier %q", name)
		}
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no sources enabled")
	}
	return adapters, nil
}

// congestionFromSpeed derives a congestion level from current vs free-flow
// speed, clamped to [0,1]. 0 is free flow, 1 is standstill.
func congestionFromSpeed(speedKPH, freeFlowKPH float64) float64 {
	if freeFlowKPH <= 0 {
		return 0
	}
	c := 1 - speedKPH/freeFlowKPH
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// travelTimeMin derives the segment travel time in minutes at the given
// speed, falling back to free-flow speed when the reading is implausible.
func travelTimeMin(seg segments.Segment, speedKPH float64) float64 {
	if speedKPH < 1 {
		speedKPH = 1
	}
	return seg.LengthKM() / speedKPH * 60
}
