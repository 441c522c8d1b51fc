package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from environment variables before koanf key mapping,
// e.g. TRACELOG_ENGINE_LOGROOT -> engine.logroot.
const envPrefix = "TRACELOG_"

type Config struct {
	Primary Primary `koanf:"primary"`
	Server  Server  `koanf:"server"`
	Engine  Engine  `koanf:"engine" validate:"required"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=dev staging prod"`
}

type Server struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"readtimeout" validate:"min=1"`
	WriteTimeout       int      `koanf:"writetimeout" validate:"min=1"`
	CORSAllowedOrigins []string `koanf:"corsallowedorigins"`
}

// Engine holds every bound the correlation engine works within. The limits
// are deliberate: queries re-read the corpus from disk, so the retention
// window and file cap keep a single query's work finite.
type Engine struct {
	LogRoot            string   `koanf:"logroot" validate:"required"`
	RetentionDays      int      `koanf:"retentiondays" validate:"min=1"`
	MaxLogFiles        int      `koanf:"maxlogfiles" validate:"min=1"`
	MaxTraces          int      `koanf:"maxtraces" validate:"min=1"`
	MergeWindowSeconds int      `koanf:"mergewindowseconds" validate:"min=1"`
	TraceHeader        string   `koanf:"traceheader" validate:"required"`
	LogGlob            string   `koanf:"logglob" validate:"required"`
	NoiseMarkers       []string `koanf:"noisemarkers"`
}

// Retention returns the trailing file-age window as a duration.
func (e Engine) Retention() time.Duration {
	return time.Duration(e.RetentionDays) * 24 * time.Hour
}

// MergeWindow returns the raw-file merge window as a duration.
func (e Engine) MergeWindow() time.Duration {
	return time.Duration(e.MergeWindowSeconds) * time.Second
}

// Default returns the configuration with every overridable knob at its
// documented default. LogRoot has no default and must come from the
// environment.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "dev"},
		Server: Server{
			Port:         "8080",
			ReadTimeout:  15,
			WriteTimeout: 30,
		},
		Engine: Engine{
			RetentionDays:      7,
			MaxLogFiles:        10,
			MaxTraces:          100,
			MergeWindowSeconds: 30,
			TraceHeader:        "X-Trace-Id",
			LogGlob:            "*.log",
			NoiseMarkers:       []string{"/api/traces", "/api/files", "tracelog", "favicon"},
		},
	}
}

// Load reads TRACELOG_* environment variables over the defaults using koanf
// and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
