package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/goliatone/go-mdsclient/components/timezones"
	"github.com/goliatone/go-mdsclient/pkg/dateadapter"
)

// EnvPrefix namespaces environment overrides, e.g. MDS_BASE_URL or
// MDS_DATE_TIME_ZONE.
const EnvPrefix = "MDS"

// DefaultBaseURL is the service root used when nothing is configured.
const DefaultBaseURL = "http://localhost:8080/mds/"

// Config is the process-wide client configuration. It is loaded once at
// startup and treated as read-only afterwards.
type Config struct {
	BaseURL     string            `mapstructure:"base_url"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	CatalogPath string            `mapstructure:"catalog_path"`
	Headers     map[string]string `mapstructure:"headers"`
	Date        DateConfig        `mapstructure:"date"`
	Log         LogConfig         `mapstructure:"log"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// DateConfig configures the date value adapter.
type DateConfig struct {
	Layout   string `mapstructure:"layout"`
	TimeZone string `mapstructure:"time_zone"`
}

// LogConfig configures the logrus logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig toggles Prometheus instrumentation of invocations.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: 30 * time.Second,
		Date: DateConfig{
			Layout:   dateadapter.DefaultLayout,
			TimeZone: "UTC",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("catalog_path", def.CatalogPath)
	v.SetDefault("headers", map[string]string{})
	v.SetDefault("date.layout", def.Date.Layout)
	v.SetDefault("date.time_zone", def.Date.TimeZone)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
}

// Load reads configuration from path (YAML, JSON or TOML, by extension) and
// applies MDS_* environment overrides. An empty path skips the file. The
// result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field that would otherwise fail later during wiring.
func (c Config) Validate() error {
	var errs []error

	base, err := url.Parse(strings.TrimSpace(c.BaseURL))
	switch {
	case strings.TrimSpace(c.BaseURL) == "":
		errs = append(errs, errors.New("base_url is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("base_url: %w", err))
	case base.Scheme != "http" && base.Scheme != "https":
		errs = append(errs, fmt.Errorf("base_url %q must use http or https", c.BaseURL))
	}

	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	if strings.TrimSpace(c.Date.Layout) == "" {
		errs = append(errs, errors.New("date.layout is required"))
	}
	if c.Date.TimeZone != "" {
		if _, err := timezones.Resolve(c.Date.TimeZone); err != nil {
			errs = append(errs, fmt.Errorf("date.time_zone: %w", err))
		}
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DateAdapter builds the adapter described by the date section.
func (c Config) DateAdapter() (*dateadapter.Adapter, error) {
	return dateadapter.New(
		dateadapter.WithLayout(c.Date.Layout),
		dateadapter.WithTimeZone(c.Date.TimeZone),
	)
}

// NewLogger builds a logrus logger writing to out at the configured level and
// format.
func (c LogConfig) NewLogger(out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log.level: %w", err)
	}
	logger := logrus.New()
	if out != nil {
		logger.SetOutput(out)
	}
	logger.SetLevel(level)
	if strings.EqualFold(c.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	return logger, nil
}
