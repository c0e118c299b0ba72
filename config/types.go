package config

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

// EngineConfig contains the fusion engine cadence and feature toggles.
// The incident scan runs at 2x the fusion interval and the prediction
// refresh at 5x; only the base interval is configurable.
type EngineConfig struct {
	FusionIntervalMS  int  `yaml:"fusionIntervalMS" validate:"gt=0"`
	MaxCacheAgeMS     int  `yaml:"maxCacheAgeMS" validate:"gte=0"`
	PredictionsOn     bool `yaml:"predictions"`
	IncidentDetection bool `yaml:"incidentDetection"`
	Alerting          bool `yaml:"alerting"`
}

// SourcesConfig contains data source selection and endpoints.
type SourcesConfig struct {
	Enabled       []string `yaml:"enabled" validate:"required,min=1,dive,oneof=feed sensor simulated"`
	FeedURL       string   `yaml:"feedURL" validate:"omitempty,url"`
	SensorURL     string   `yaml:"sensorURL" validate:"omitempty,url"`
	TimeoutMS     int      `yaml:"timeoutMS" validate:"gte=0"`
	SimulatorSeed int64    `yaml:"simulatorSeed"`
}

// SegmentConfig describes one monitored corridor in the catalog.
type SegmentConfig struct {
	ID          string  `yaml:"id" validate:"required"`
	Name        string  `yaml:"name"`
	StartLat    float64 `yaml:"startLat" validate:"gte=-90,lte=90"`
	StartLon    float64 `yaml:"startLon" validate:"gte=-180,lte=180"`
	EndLat      float64 `yaml:"endLat" validate:"gte=-90,lte=90"`
	EndLon      float64 `yaml:"endLon" validate:"gte=-180,lte=180"`
	FreeFlowKPH float64 `yaml:"freeFlowKPH" validate:"gt=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig    `yaml:"server"`
	Engine   EngineConfig    `yaml:"engine"`
	Sources  SourcesConfig   `yaml:"sources"`
	Segments []SegmentConfig `yaml:"segments"`
}
