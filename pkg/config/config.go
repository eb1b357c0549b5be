// Package config loads service settings from defaults, an optional config
// file and PLANAR_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Graph formats accepted by graph.format.
const (
	FormatText   = "text"
	FormatBinary = "binary"
)

// Config is the resolved configuration.
type Config struct {
	Graph   GraphConfig
	Server  ServerConfig
	Routing RoutingConfig
	Log     LogConfig
}

type GraphConfig struct {
	Path   string
	Format string
}

type ServerConfig struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxConcurrent  int
	CORSOrigins    []string
	RateLimit      float64 // requests per second, 0 disables
	RateBurst      int
}

type RoutingConfig struct {
	SnapRadius float64
}

type LogConfig struct {
	Level string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("graph.path", "map.txt")
	v.SetDefault("graph.format", FormatText)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.request_timeout", "5s")
	v.SetDefault("server.max_concurrent", 64)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 100.0)
	v.SetDefault("server.rate_burst", 200)

	v.SetDefault("routing.snap_radius", 100.0)

	v.SetDefault("log.level", "info")
}

// Load resolves the configuration. path may be empty, in which case only
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PLANAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Graph: GraphConfig{
			Path:   v.GetString("graph.path"),
			Format: strings.ToLower(v.GetString("graph.format")),
		},
		Server: ServerConfig{
			Port:           v.GetInt("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			MaxConcurrent:  v.GetInt("server.max_concurrent"),
			CORSOrigins:    v.GetStringSlice("server.cors_origins"),
			RateLimit:      v.GetFloat64("server.rate_limit"),
			RateBurst:      v.GetInt("server.rate_burst"),
		},
		Routing: RoutingConfig{
			SnapRadius: v.GetFloat64("routing.snap_radius"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Graph.Path == "" {
		errs = append(errs, errors.New("graph.path must be set"))
	}
	if c.Graph.Format != FormatText && c.Graph.Format != FormatBinary {
		errs = append(errs, fmt.Errorf("graph.format %q must be %q or %q", c.Graph.Format, FormatText, FormatBinary))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxConcurrent <= 0 {
		errs = append(errs, fmt.Errorf("server.max_concurrent must be positive, got %d", c.Server.MaxConcurrent))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must not be negative, got %g", c.Server.RateLimit))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("server.rate_burst must be positive when rate limiting, got %d", c.Server.RateBurst))
	}
	return errors.Join(errs...)
}
