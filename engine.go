package trafficfusion

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/theoremus-urban-solutions/traffic-fusion/config"
	"github.com/theoremus-urban-solutions/traffic-fusion/segments"
	"github.com/theoremus-urban-solutions/traffic-fusion/source"
	"github.com/theoremus-urban-solutions/traffic-fusion/utils"
)

// maxConcurrentSegments bounds cross-segment fusion concurrency so a large
// catalog does not translate into unbounded concurrent upstream calls.
const maxConcurrentSegments = 8

// Construction-time validation errors.
var (
	ErrInvalidInterval = errors.New("fusion interval must be positive")
	ErrNoAdapters      = errors.New("at least one source adapter is required")
	ErrNoRegistry      = errors.New("segment registry is required")
)

// Engine is the traffic condition fusion and alerting engine. Construct it
// with New, drive it with Start/Stop, and read it through the snapshot
// accessors. All exported methods are safe for concurrent use.
type Engine struct {
	cfg      config.AppConfig
	registry *segments.Registry
	adapters []source.Adapter
	logger   *slog.Logger
	clock    utils.Clock
	metrics  *engineMetrics
	bus      *eventBus
	timeout  time.Duration

	mu          sync.RWMutex
	running     bool
	states      map[string]FusedState
	predictions map[string]Prediction
	detector    *incidentDetector
	alerts      *alertManager
	lastFusion  time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option adjusts an Engine at construction time.
type Option func(*Engine)

// WithClock injects a clock; tests use this for deterministic dedup windows
// and diurnal behavior.
func WithClock(c utils.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithMetrics registers the engine's metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) { e.metrics = newEngineMetrics(reg) }
}

// New constructs an engine. The configuration must carry a positive fusion
// interval, the registry at least one segment, and adapters at least one
// source; anything else refuses to construct rather than run with undefined
// behavior.
func New(cfg config.AppConfig, reg *segments.Registry, adapters []source.Adapter, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg.Engine.FusionIntervalMS <= 0 {
		return nil, ErrInvalidInterval
	}
	if reg == nil || reg.Len() == 0 {
		return nil, ErrNoRegistry
	}
	if len(adapters) == 0 {
		return nil, ErrNoAdapters
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := time.Duration(cfg.Sources.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	e := &Engine{
		cfg:         cfg,
		registry:    reg,
		adapters:    adapters,
		logger:      logger,
		clock:       utils.RealClock{},
		timeout:     timeout,
		states:      make(map[string]FusedState),
		predictions: make(map[string]Prediction),
	}
	e.bus = newEventBus(logger)
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = newEngineMetrics(nil)
	}
	e.detector = newIncidentDetector(e.clock)
	e.alerts = newAlertManager(e.clock)
	return e, nil
}

// Start launches the three periodic loops: fusion refresh, incident scan at
// 2x the fusion interval, and prediction refresh at 5x. One fusion pass runs
// immediately, before the first tick. Starting a running engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.running = true
	e.mu.Unlock()

	interval := time.Duration(e.cfg.Engine.FusionIntervalMS) * time.Millisecond
	e.logger.Info("engine starting",
		"segments", e.registry.Len(),
		"sources", len(e.adapters),
		"fusion_interval", interval)

	e.wg.Add(1)
	go e.loop(ctx, interval, e.fusionCycle, true)
	if e.cfg.Engine.IncidentDetection {
		e.wg.Add(1)
		go e.loop(ctx, 2*interval, e.incidentCycle, false)
	}
	if e.cfg.Engine.PredictionsOn {
		e.wg.Add(1)
		go e.loop(ctx, 5*interval, e.predictionCycle, false)
	}
}

// Stop cancels all timers and waits for the loops to exit. In-flight
// adapter calls complete on their own timeouts but their results are
// discarded. Stop is idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	cancel := e.cancel
	e.mu.Unlock()

	cancel()
	e.wg.Wait()
	e.logger.Info("engine stopped")
}

// Running reports whether the engine's timers are active.
func (e *Engine) Running() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// loop drives one periodic cycle. Ticks that arrive while a cycle is still
// executing are coalesced by the ticker, so a slow cycle cannot pile up
// overlapping passes for the same timer.
func (e *Engine) loop(ctx context.Context, interval time.Duration, cycle func(context.Context), immediate bool) {
	defer e.wg.Done()
	if immediate {
		cycle(ctx)
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cycle(ctx)
		}
	}
}

// fusionCycle refreshes the fused state of every segment. Segments are
// processed concurrently under a worker bound; within one segment, all
// adapters are called concurrently with a per-call timeout.
func (e *Engine) fusionCycle(ctx context.Context) {
	start := time.Now()
	segs := e.registry.All()

	sem := make(chan struct{}, maxConcurrentSegments)
	var wg sync.WaitGroup
	var updated int64
	for _, seg := range segs {
		wg.Add(1)
		sem <- struct{}{}
		go func(seg segments.Segment) {
			defer wg.Done()
			defer func() { <-sem }()
			obs := collectObservations(ctx, e.adapters, seg, e.timeout, e.logger)
			e.countObservations(obs)
			st, ok := fuseObservations(obs)
			if !ok {
				// No source reported; keep the previous state. Its
				// timestamp is the staleness signal for consumers.
				e.logger.Debug("no observations this cycle", "segment", seg.ID)
				return
			}
			if e.storeState(seg, st) {
				atomic.AddInt64(&updated, 1)
			}
		}(seg)
	}
	wg.Wait()

	if ctx.Err() != nil {
		return
	}
	e.metrics.observeFusionCycle(start, len(segs)-int(updated))

	now := e.clock.Now()
	e.mu.Lock()
	e.lastFusion = now
	e.mu.Unlock()

	e.bus.publish(Event{Type: EventStateUpdated, Timestamp: now, Count: int(updated)})
}

func (e *Engine) countObservations(obs []source.Observation) {
	for _, o := range obs {
		e.metrics.observations.WithLabelValues(o.Source, "ok").Inc()
	}
}

// storeState writes one segment's fused state and evaluates the congestion
// alert trigger. Late results arriving after Stop are discarded so nothing
// writes into torn-down state.
func (e *Engine) storeState(seg segments.Segment, st FusedState) bool {
	var alert *Alert
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return false
	}
	e.states[seg.ID] = st
	if e.cfg.Engine.Alerting && st.CongestionLevel > congestionAlertThreshold {
		if a, ok := e.alerts.raiseCongestion(seg, st); ok {
			alert = &a
		}
	}
	e.mu.Unlock()

	if alert != nil {
		e.metrics.alertsRaised.WithLabelValues(alert.Type).Inc()
		e.logger.Info("alert raised", "type", alert.Type, "severity", alert.Severity, "segment", seg.ID)
		e.bus.publish(Event{Type: EventAlertCreated, Timestamp: alert.Timestamp, Alert: alert})
	}
	return true
}

// incidentCycle infers incidents from the current fused states.
func (e *Engine) incidentCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	var alerts []Alert
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	created := e.detector.scan(e.states, e.registry)
	for _, inc := range created {
		if !e.cfg.Engine.Alerting {
			continue
		}
		seg, ok := e.registry.Get(inc.SegmentID)
		if !ok {
			continue
		}
		alerts = append(alerts, e.alerts.raiseIncident(seg, inc))
	}
	e.mu.Unlock()

	for _, inc := range created {
		e.metrics.incidentsDetected.Inc()
		e.logger.Info("incident detected", "id", inc.ID, "segment", inc.SegmentID, "severity", inc.Severity)
	}
	for i := range alerts {
		a := alerts[i]
		e.metrics.alertsRaised.WithLabelValues(a.Type).Inc()
		e.bus.publish(Event{Type: EventAlertCreated, Timestamp: a.Timestamp, Alert: &a})
	}
}

// predictionCycle regenerates the forecast for every segment with fused
// state, fully replacing prior predictions.
func (e *Engine) predictionCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	now := e.clock.Now()
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	count := 0
	for id, st := range e.states {
		e.predictions[id] = predictSegment(st, now)
		count++
	}
	e.mu.Unlock()

	e.metrics.predictionCycles.Inc()
	e.bus.publish(Event{Type: EventPredictionsUpdated, Timestamp: now, Count: count})
}
