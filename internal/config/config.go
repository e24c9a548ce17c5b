package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/vango-dev/rangeui/internal/errors"
)

const (
	// ConfigName is the base name of the configuration file.
	ConfigName = "rangeui"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "RANGEUI"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log handler.
	DefaultLogFormat = "text"

	// DefaultPreviewHost is the default preview server host.
	DefaultPreviewHost = "localhost"

	// DefaultPreviewPort is the default preview server port.
	DefaultPreviewPort = 3000

	// DefaultMetricsPath is where the preview server exposes metrics.
	DefaultMetricsPath = "/metrics"

	// DefaultSnapshotPrefix is the default object key prefix for snapshots.
	DefaultSnapshotPrefix = "snapshots/"

	// DefaultSnapshotRegion is the default AWS region for snapshots.
	DefaultSnapshotRegion = "us-east-1"
)

// Config is the complete rangeui configuration.
type Config struct {
	// Log configures the process logger.
	Log LogConfig `mapstructure:"log"`

	// Preview configures the preview server.
	Preview PreviewConfig `mapstructure:"preview"`

	// Snapshot configures snapshot publishing.
	Snapshot SnapshotConfig `mapstructure:"snapshot"`

	// Render configures the render runtime.
	Render RenderConfig `mapstructure:"render"`

	// configPath stores the file the config was read from, if any.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// PreviewConfig contains preview server settings.
type PreviewConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPath string `mapstructure:"metrics_path"`
}

// SnapshotConfig contains snapshot publishing settings.
type SnapshotConfig struct {
	// Bucket is the S3 bucket. Publishing requires it.
	Bucket string `mapstructure:"bucket"`

	// Prefix is prepended to every object key.
	Prefix string `mapstructure:"prefix"`

	// Region is the AWS region of the bucket.
	Region string `mapstructure:"region"`
}

// RenderConfig contains runtime settings.
type RenderConfig struct {
	// PruneStaleChildren removes old children that a new render no longer
	// produces.
	PruneStaleChildren bool `mapstructure:"prune_stale_children"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Preview: PreviewConfig{
			Host:        DefaultPreviewHost,
			Port:        DefaultPreviewPort,
			MetricsPath: DefaultMetricsPath,
		},
		Snapshot: SnapshotConfig{
			Prefix: DefaultSnapshotPrefix,
			Region: DefaultSnapshotRegion,
		},
	}
}

// SetDefaults registers every key with its default on v. Keys must be known
// to viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := New()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("preview.host", d.Preview.Host)
	v.SetDefault("preview.port", d.Preview.Port)
	v.SetDefault("preview.metrics_path", d.Preview.MetricsPath)
	v.SetDefault("snapshot.bucket", d.Snapshot.Bucket)
	v.SetDefault("snapshot.prefix", d.Snapshot.Prefix)
	v.SetDefault("snapshot.region", d.Snapshot.Region)
	v.SetDefault("render.prune_stale_children", d.Render.PruneStaleChildren)
}

// Load reads configuration using a fresh viper instance. An empty path
// searches the working directory for rangeui.* and tolerates its absence.
func Load(path string) (*Config, error) {
	return LoadFrom(viper.New(), path)
}

// LoadFrom reads configuration into v, which may already carry bound flags.
func LoadFrom(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.New("E301").WithDetail(err.Error()).Wrap(err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("E301").WithDetail(err.Error()).Wrap(err)
	}
	cfg.configPath = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the config was read from, or "".
func (c *Config) Path() string {
	return c.configPath
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Preview.Port < 1 || c.Preview.Port > 65535 {
		return invalid("preview.port must be between 1 and 65535, got %d", c.Preview.Port)
	}
	if !strings.HasPrefix(c.Preview.MetricsPath, "/") {
		return invalid("preview.metrics_path must start with /, got %q", c.Preview.MetricsPath)
	}
	if strings.HasPrefix(c.Snapshot.Prefix, "/") {
		return invalid("snapshot.prefix must not start with /, got %q", c.Snapshot.Prefix)
	}
	return nil
}

// PreviewAddress returns the listen address for the preview server.
func (c *Config) PreviewAddress() string {
	return fmt.Sprintf("%s:%d", c.Preview.Host, c.Preview.Port)
}

// PreviewURL returns the base URL of the preview server.
func (c *Config) PreviewURL() string {
	return "http://" + c.PreviewAddress()
}

// NewLogger builds the process logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, invalid("log.level must be debug, info, warn or error, got %q", s)
	}
	return level, nil
}

func invalid(format string, args ...any) error {
	return errors.New("E301").WithDetail(fmt.Sprintf(format, args...))
}
