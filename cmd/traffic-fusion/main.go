package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	trafficfusion "github.com/theoremus-urban-solutions/traffic-fusion"
	"github.com/theoremus-urban-solutions/traffic-fusion/config"
	"github.com/theoremus-urban-solutions/traffic-fusion/segments"
	"github.com/theoremus-urban-solutions/traffic-fusion/source"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (empty = built-in defaults)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	sources := flag.String("sources", "", "comma-separated source identifiers (overrides config)")
	seed := flag.Int64("seed", 0, "simulator seed (overrides config)")
	logLevel := flag.String("log-level", "info", "debug|info|warn|error")
	flag.Parse()

	logger := newLogger(*logLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *sources != "" {
		cfg.Sources.Enabled = splitList(*sources)
	}
	if *seed != 0 {
		cfg.Sources.SimulatorSeed = *seed
	}
	if err := config.Validate(cfg); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	catalog := segments.DefaultCatalog()
	if len(cfg.Segments) > 0 {
		catalog = catalog[:0]
		for _, s := range cfg.Segments {
			catalog = append(catalog, segments.Segment{
				ID:          s.ID,
				Name:        s.Name,
				Start:       segments.Coordinate{Lat: s.StartLat, Lon: s.StartLon},
				End:         segments.Coordinate{Lat: s.EndLat, Lon: s.EndLon},
				FreeFlowKPH: s.FreeFlowKPH,
			})
		}
	}
	registry, err := segments.NewRegistry(catalog)
	if err != nil {
		logger.Error("invalid segment catalog", "error", err)
		os.Exit(1)
	}

	adapters, err := source.Build(cfg.Sources, nil)
	if err != nil {
		logger.Error("invalid source configuration", "error", err)
		os.Exit(1)
	}

	engine, err := trafficfusion.New(cfg, registry, adapters, logger,
		trafficfusion.WithMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		logger.Error("engine construction failed", "error", err)
		os.Exit(1)
	}

	engine.Start()
	server := trafficfusion.NewServer(engine, cfg.Server.Port, logger)
	server.Start()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	engine.Stop()
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
