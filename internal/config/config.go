package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bluewater-labs/ecoindex/internal/engine"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Raster RasterConfig `yaml:"raster" mapstructure:"raster"`
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the sample store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`             // file, sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`                 // file driver: directory for JSON stores
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"` // sqlite DSN or postgres conn string
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int    `yaml:"port" mapstructure:"port"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	UploadPerMinute int    `yaml:"upload_per_minute" mapstructure:"upload_per_minute"`
	MapboxToken     string `yaml:"mapbox_token" mapstructure:"mapbox_token"`
}

// RasterConfig configures raster sampling.
type RasterConfig struct {
	Stride   int      `yaml:"stride" mapstructure:"stride"`
	DemoPath string   `yaml:"demo_path" mapstructure:"demo_path"` // raster served by /v1/datapoints
	Bands    []string `yaml:"bands" mapstructure:"bands"`         // optional band order override
}

// EngineConfig holds the measurement stand-ins fed to the indicator
// formulas when real redox and chloride readings are unavailable.
type EngineConfig struct {
	RedoxMV     float64 `yaml:"redox_mv" mapstructure:"redox_mv"`
	ChlorideMgL float64 `yaml:"chloride_mgl" mapstructure:"chloride_mgl"`
}

// Defaults converts the engine section into the engine's Defaults value.
func (e EngineConfig) Defaults() engine.Defaults {
	return engine.Defaults{RedoxMV: e.RedoxMV, ChlorideMgL: e.ChlorideMgL}
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ECOINDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", ".")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_bytes", int64(256<<20))
	v.SetDefault("server.upload_per_minute", 6)
	v.SetDefault("raster.stride", 10)
	v.SetDefault("raster.demo_path", "sample.tif")
	v.SetDefault("engine.redox_mv", engine.StandardDefaults.RedoxMV)
	v.SetDefault("engine.chloride_mgl", engine.StandardDefaults.ChlorideMgL)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for the given run mode and reports
// every problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "file", "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be file, sqlite or postgres")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required for the postgres driver")
	}
	if c.Raster.Stride <= 0 {
		problems = append(problems, "raster.stride must be > 0")
	}
	if c.Engine.RedoxMV < 0 {
		problems = append(problems, "engine.redox_mv must be >= 0")
	}
	if c.Engine.ChlorideMgL < 0 {
		problems = append(problems, "engine.chloride_mgl must be >= 0")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.MaxUploadBytes <= 0 {
			problems = append(problems, "server.max_upload_bytes must be > 0")
		}
		if c.Server.UploadPerMinute <= 0 {
			problems = append(problems, "server.upload_per_minute must be > 0")
		}
	case "cli":
	default:
		problems = append(problems, "unknown mode: "+mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
