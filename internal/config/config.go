package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultScheduledInterval = time.Hour
	DefaultTrendWindow       = 5
	DefaultBenchmarkTimeout  = 5 * time.Second
	DefaultBenchmarkRunCount = 1
	DefaultHTTPPort          = 8080
	DefaultBroadcastInterval = 5 * time.Second
	DefaultPollInterval      = 30 * time.Second
)

// Report modes accepted by engine.report_mode.
const (
	ReportModeOnce       = "once"
	ReportModeContinuous = "continuous"
)

// Config is the top-level daemon configuration.
type Config struct {
	Engine  EngineConfig `yaml:"engine"`
	Server  ServerConfig `yaml:"server"`
	Sources []Source     `yaml:"sources"`
}

// EngineConfig holds the telemetry engine settings.
type EngineConfig struct {
	// EnableAnalytics turns on report delivery to AnalyticsEndpoint.
	EnableAnalytics bool `yaml:"enable_analytics"`

	// AnalyticsEndpoint is the URL telemetry envelopes are POSTed to.
	AnalyticsEndpoint string `yaml:"analytics_endpoint"`

	// EnableConsoleLogging lowers the log level to debug.
	EnableConsoleLogging bool `yaml:"enable_console_logging"`

	// ReportAllChanges subscribes for every metric change instead of
	// settled values only.
	ReportAllChanges bool `yaml:"report_all_changes"`

	// ReportMode is "once" (latch; analytics delivery) or "continuous"
	// (every qualifying update; live dashboards).
	ReportMode string `yaml:"report_mode"`

	// ScheduledInterval is the period between scheduled benchmark runs.
	ScheduledInterval time.Duration `yaml:"scheduled_interval"`

	// TrendWindow is the number of recent records used by trend analysis.
	TrendWindow int `yaml:"trend_window"`

	// Benchmark configures the measurement passes.
	Benchmark BenchmarkConfig `yaml:"benchmark"`

	// Analyzer configures the external audit-score collaborator.
	Analyzer AnalyzerConfig `yaml:"analyzer"`
}

// BenchmarkConfig configures one measurement pass.
type BenchmarkConfig struct {
	URL           string        `yaml:"url"`
	RunCount      int           `yaml:"run_count"`
	Timeout       time.Duration `yaml:"timeout"`
	DisableCache  bool          `yaml:"disable_cache"`
	Throttling    string        `yaml:"throttling"`
	DeviceProfile string        `yaml:"device_profile"`
}

// AnalyzerConfig points at the external page-analysis service. An empty
// endpoint means audit sub-scores fall back to surfaced-approximate
// placeholders.
type AnalyzerConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	// HTTPPort serves the REST API, WebSocket hub, beacon ingest and
	// /metrics.
	HTTPPort int `yaml:"http_port"`

	// BroadcastInterval is how often the WebSocket hub pushes the live
	// snapshot to connected dashboards.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
}

// Source describes one instrumentation source.
type Source struct {
	// ID is a unique, human-readable identifier.
	ID string `yaml:"id"`

	// Type is "beacon" (in-page script POSTs samples) or "exposition"
	// (poll a Prometheus text exposition of page-vitals gauges).
	Type string `yaml:"type"`

	// Endpoint is the exposition URL. Unused for beacon sources.
	Endpoint string `yaml:"endpoint"`

	// PollInterval controls exposition polling cadence.
	PollInterval time.Duration `yaml:"poll_interval"`

	// PageURL and AgentString describe the probed page for exposition
	// sources, where no beacon carries the session context.
	PageURL     string `yaml:"page_url"`
	AgentString string `yaml:"agent_string"`
}

// Load reads and parses the YAML config file at path. Missing optional
// fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			ReportMode:        ReportModeOnce,
			ScheduledInterval: DefaultScheduledInterval,
			TrendWindow:       DefaultTrendWindow,
			Benchmark: BenchmarkConfig{
				RunCount: DefaultBenchmarkRunCount,
				Timeout:  DefaultBenchmarkTimeout,
			},
		},
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			BroadcastInterval: DefaultBroadcastInterval,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Engine.EnableAnalytics && cfg.Engine.AnalyticsEndpoint == "" {
		return fmt.Errorf("engine.analytics_endpoint is required when analytics is enabled")
	}
	switch cfg.Engine.ReportMode {
	case ReportModeOnce, ReportModeContinuous:
	default:
		return fmt.Errorf("engine.report_mode must be %q or %q", ReportModeOnce, ReportModeContinuous)
	}
	if cfg.Engine.ScheduledInterval <= 0 {
		return fmt.Errorf("engine.scheduled_interval must be positive")
	}
	if cfg.Engine.TrendWindow <= 0 {
		return fmt.Errorf("engine.trend_window must be positive")
	}
	if cfg.Engine.Benchmark.Timeout <= 0 {
		return fmt.Errorf("engine.benchmark.timeout must be positive")
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be in (0, 65535]")
	}
	for i, src := range cfg.Sources {
		if src.ID == "" {
			return fmt.Errorf("sources[%d]: id is required", i)
		}
		switch src.Type {
		case "beacon":
		case "exposition":
			if src.Endpoint == "" {
				return fmt.Errorf("sources[%d] %q: endpoint is required for exposition sources", i, src.ID)
			}
		default:
			return fmt.Errorf("sources[%d] %q: unknown type %q", i, src.ID, src.Type)
		}
	}
	return nil
}
