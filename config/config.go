package config

import (
	"fmt"
	"time"

	"github.com/terralab/prockit/logger"
	"github.com/terralab/prockit/observability"
	"github.com/terralab/prockit/provider"
	"github.com/terralab/prockit/server"
	"github.com/terralab/prockit/util"
)

// Config is the top-level host configuration.
type Config struct {
	Name          string                     `yaml:"name" mapstructure:"name"`
	Environment   string                     `yaml:"environment" mapstructure:"environment"`
	Version       string                     `yaml:"version" mapstructure:"version"`
	Debug         bool                       `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config              `yaml:"logging" mapstructure:"logging"`
	Server        server.Config              `yaml:"server" mapstructure:"server"`
	Observability Observability              `yaml:"observability" mapstructure:"observability"`
	Processing    provider.FormatPreferences `yaml:"processing" mapstructure:"processing"`
}

// Observability configures the OTLP exporters.
type Observability struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	// Interval is the metric export interval in seconds.
	Interval int `yaml:"interval" mapstructure:"interval"`
}

// TracerConfig builds the tracer configuration for this host.
func (o Observability) TracerConfig(name, version, environment string) observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    name,
		ServiceVersion: version,
		Environment:    environment,
		Endpoint:       o.Endpoint,
		Insecure:       o.Insecure,
		SampleRate:     o.SampleRate,
	}
}

// MeterConfig builds the meter configuration for this host.
func (o Observability) MeterConfig(name, version, environment string) observability.MeterConfig {
	return observability.MeterConfig{
		ServiceName:    name,
		ServiceVersion: version,
		Environment:    environment,
		Endpoint:       o.Endpoint,
		Insecure:       o.Insecure,
		Interval:       time.Duration(o.Interval) * time.Second,
	}
}

// ApplyDefaults fills unset fields with development defaults.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()

	if c.Observability.Endpoint == "" {
		c.Observability.Endpoint = "localhost:4318"
	}
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
	if c.Observability.Interval == 0 {
		c.Observability.Interval = 15
	}
	if c.Environment == "development" {
		c.Observability.Insecure = true
	}

	c.Processing.VectorExtension = util.Coalesce(util.NormalizeExtension(c.Processing.VectorExtension), "gpkg")
	c.Processing.RasterExtension = util.Coalesce(util.NormalizeExtension(c.Processing.RasterExtension), "tif")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if c.Observability.SampleRate < 0 || c.Observability.SampleRate > 1 {
		return fmt.Errorf("config.observability.sample_rate must be between 0 and 1 (got: %f)", c.Observability.SampleRate)
	}
	return nil
}
