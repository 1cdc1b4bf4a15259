// Package config loads classifier settings from a YAML file and ARPP_*
// environment variables, and validates them against an embedded CUE
// schema.
package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/roach88/arpp/internal/classify"
	"github.com/roach88/arpp/internal/ingest"
	"github.com/roach88/arpp/internal/measure"
)

// EnvPrefix prefixes environment overrides, e.g. ARPP_MEASURE.
const EnvPrefix = "ARPP"

// Config keys.
const (
	KeyMeasure            = "measure"
	KeyMinimalImprovement = "minimal_improvement"
	KeyRelevanceRange     = "relevance_range"
	KeyAllowEmptyItems    = "allow_empty_items"
	KeySeparator          = "separator"
	KeyMeasures           = "measures"
)

// DefaultMeasure is the interest measure used when none is configured.
const DefaultMeasure = "lift"

// Config is the decoded settings file.
type Config struct {
	Measure            string                   `mapstructure:"measure" json:"measure"`
	MinimalImprovement float64                  `mapstructure:"minimal_improvement" json:"minimal_improvement"`
	RelevanceRange     float64                  `mapstructure:"relevance_range" json:"relevance_range"`
	AllowEmptyItems    bool                     `mapstructure:"allow_empty_items" json:"allow_empty_items"`
	Separator          string                   `mapstructure:"separator" json:"separator"`
	Measures           map[string]MeasureConfig `mapstructure:"measures" json:"measures,omitempty"`
}

// MeasureConfig registers or overrides a measure column.
type MeasureConfig struct {
	Kind        string `mapstructure:"kind" json:"kind"`
	Probability bool   `mapstructure:"probability" json:"probability"`
}

// Default returns the settings used without a config file.
func Default() Config {
	return Config{
		Measure:            DefaultMeasure,
		MinimalImprovement: classify.DefaultMinimalImprovement,
		Separator:          ingest.DefaultSeparator,
	}
}

// Load reads path (optional) and environment overrides on top of the
// defaults. Unknown keys are rejected. The result is decoded, not yet
// validated.
func Load(path string) (*Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault(KeyMeasure, d.Measure)
	v.SetDefault(KeyMinimalImprovement, d.MinimalImprovement)
	v.SetDefault(KeyRelevanceRange, d.RelevanceRange)
	v.SetDefault(KeyAllowEmptyItems, d.AllowEmptyItems)
	v.SetDefault(KeySeparator, d.Separator)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Registry returns the default measure registry extended with the
// configured measures.
func (c *Config) Registry() (measure.Registry, error) {
	reg := measure.DefaultRegistry()

	names := make([]string, 0, len(c.Measures))
	for name := range c.Measures {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mc := c.Measures[name]
		kind, err := measure.ParseKind(mc.Kind)
		if err != nil {
			return nil, fmt.Errorf("measure %s: %w", name, err)
		}
		reg[name] = measure.Spec{Kind: kind, Probability: mc.Probability}
	}
	return reg, nil
}

// Classify converts the settings into engine parameters.
func (c *Config) Classify(logger *zap.Logger) classify.Config {
	return classify.Config{
		Measure:            c.Measure,
		MinimalImprovement: c.MinimalImprovement,
		RelevanceRange:     c.RelevanceRange,
		AllowEmptyItems:    c.AllowEmptyItems,
		Logger:             logger,
	}
}

// Ingest converts the settings into rule reader options.
func (c *Config) Ingest(reg measure.Registry, logger *zap.Logger) ingest.Options {
	return ingest.Options{Separator: c.Separator, Registry: reg, Logger: logger}
}

// ValidationErrors is returned by Check when validation fails.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
}

// Check validates c and returns ValidationErrors when anything is wrong.
func (c *Config) Check() error {
	if errs := Validate(c); len(errs) > 0 {
		return ValidationErrors(errs)
	}
	return nil
}

// AsValidationErrors extracts the validation errors from err.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
