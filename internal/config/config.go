package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/newthinker/sigchart/internal/core"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Data    DataConfig    `mapstructure:"data"`
	Static  StaticConfig  `mapstructure:"static"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Overlay OverlayConfig `mapstructure:"overlay"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DataConfig locates the default sample files.
type DataConfig struct {
	Source     string   `mapstructure:"source"` // "localfs" or "s3"
	Path       string   `mapstructure:"path"`   // For localfs
	S3         S3Config `mapstructure:"s3"`     // For S3
	OHLCVFile  string   `mapstructure:"ohlcv_file"`
	TradesFile string   `mapstructure:"trades_file"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type StaticConfig struct {
	Dir string `mapstructure:"dir"`
}

// UploadConfig bounds chart uploads.
type UploadConfig struct {
	MaxBytes      int64   `mapstructure:"max_bytes"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// OverlayConfig holds hover overlay settings.
type OverlayConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadEnv loads a .env file into the process environment. A missing file
// is not an error; variables already set are kept.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads configuration from file, layered over Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("data.source", d.Data.Source)
	v.SetDefault("data.path", d.Data.Path)
	v.SetDefault("data.ohlcv_file", d.Data.OHLCVFile)
	v.SetDefault("data.trades_file", d.Data.TradesFile)
	v.SetDefault("static.dir", d.Static.Dir)
	v.SetDefault("upload.max_bytes", d.Upload.MaxBytes)
	v.SetDefault("upload.rate_per_second", d.Upload.RatePerSecond)
	v.SetDefault("upload.burst", d.Upload.Burst)
	v.SetDefault("overlay.enabled", d.Overlay.Enabled)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Data: DataConfig{
			Source:     "localfs",
			Path:       "data",
			OHLCVFile:  "sample_ohlcv.csv",
			TradesFile: "sample_trades.csv",
		},
		Static: StaticConfig{
			Dir: "static",
		},
		Upload: UploadConfig{
			MaxBytes:      32 << 20,
			RatePerSecond: 2,
			Burst:         5,
		},
		Overlay: OverlayConfig{
			Enabled: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Data.Source {
	case "localfs":
		if c.Data.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("data.path required when source is localfs"))
		}
	case "s3":
		if c.Data.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("data.s3.bucket required when source is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown data source %q", c.Data.Source))
	}
	if c.Data.OHLCVFile == "" || c.Data.TradesFile == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("data.ohlcv_file and data.trades_file are required"))
	}

	if c.Upload.MaxBytes <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes))
	}
	if c.Upload.RatePerSecond < 0 || c.Upload.Burst < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upload rate limit cannot be negative"))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path))
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
