package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Default returns the configuration used when no file overrides it: the
// deterministic simulated source only, a 30 second fusion interval, and all
// engine features enabled.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 16181},
		Engine: EngineConfig{
			FusionIntervalMS:  30000,
			MaxCacheAgeMS:     120000,
			PredictionsOn:     true,
			IncidentDetection: true,
			Alerting:          true,
		},
		Sources: SourcesConfig{
			Enabled:   []string{"simulated"},
			TimeoutMS: 3000,
		},
	}
}

// Load reads and validates the application configuration. An empty path
// returns the defaults. File values are layered over the defaults, so a
// partial config file is fine.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return AppConfig{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks a configuration for values the engine cannot run with.
func Validate(cfg AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := v.Struct(cfg.Engine); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	if err := v.Struct(cfg.Sources); err != nil {
		return fmt.Errorf("sources config: %w", err)
	}
	for i, s := range cfg.Segments {
		if err := v.Struct(s); err != nil {
			return fmt.Errorf("segment %d (%s): %w", i, s.ID, err)
		}
	}
	for _, name := range cfg.Sources.Enabled {
		if name == "feed" && cfg.Sources.FeedURL == "" {
			return fmt.Errorf("source %q enabled but feedURL is not set", name)
		}
		if name == "sensor" && cfg.Sources.SensorURL == "" {
			return fmt.Errorf("source %q enabled but sensorURL is not set", name)
		}
	}
	return nil
}
