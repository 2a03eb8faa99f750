package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	GHCN    GHCNConfig    `yaml:"ghcn" mapstructure:"ghcn"`
	Cluster ClusterConfig `yaml:"cluster" mapstructure:"cluster"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Serve   ServeConfig   `yaml:"serve" mapstructure:"serve"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// GHCNConfig configures the GHCN-M data source: where the archives live,
// where they are unpacked locally, and which stations and years qualify.
type GHCNConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	DataDir     string  `yaml:"data_dir" mapstructure:"data_dir"`
	MinYear     int     `yaml:"min_year" mapstructure:"min_year"`
	MaxYear     int     `yaml:"max_year" mapstructure:"max_year"`
	MinYears    int     `yaml:"min_years" mapstructure:"min_years"`
	CountryCode string  `yaml:"country_code" mapstructure:"country_code"`
	MaxLat      float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MinLon      float64 `yaml:"min_lon" mapstructure:"min_lon"`
}

// ClusterConfig configures the k-means run.
type ClusterConfig struct {
	K          int   `yaml:"k" mapstructure:"k"`
	Iterations int   `yaml:"iterations" mapstructure:"iterations"`
	Seed       int64 `yaml:"seed" mapstructure:"seed"`
	ShiftMax   int   `yaml:"shift_max" mapstructure:"shift_max"`
	Verbose    bool  `yaml:"verbose" mapstructure:"verbose"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServeConfig configures the read-only map server.
type ServeConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("CLIMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ghcn.base_url", "ftp://ftp.ncdc.noaa.gov/pub/data/ghcn/v3")
	v.SetDefault("ghcn.data_dir", "data")
	v.SetDefault("ghcn.min_year", 1981)
	v.SetDefault("ghcn.max_year", 2010)
	v.SetDefault("ghcn.min_years", 20)
	v.SetDefault("ghcn.country_code", "425")
	v.SetDefault("ghcn.max_lat", 49.0)
	v.SetDefault("ghcn.min_lon", -130.0)
	v.SetDefault("cluster.k", 13)
	v.SetDefault("cluster.iterations", 100)
	v.SetDefault("cluster.shift_max", 800)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "climate.db")
	v.SetDefault("serve.port", 8080)
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
