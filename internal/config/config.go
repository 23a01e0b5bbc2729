// Package config holds the runtime parameters of a csedork run.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmylchreest/csedork/pkg/query"
)

// ErrInvalid indicates a configuration that fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Defaults
const (
	DefaultOutput  = "results.txt"
	DefaultDelay   = 15.0 // seconds
	DefaultTimeout = 30.0 // seconds
)

// Config is the full set of run parameters. Durations are in seconds to
// match the command line.
type Config struct {
	Wordlist string  `mapstructure:"wordlist" validate:"required"`
	Site     string  `mapstructure:"site" validate:"required,excludesrune= "`
	CX       string  `mapstructure:"cx" validate:"required"`
	Endpoint string  `mapstructure:"endpoint" validate:"required,url"`
	Output   string  `mapstructure:"output" validate:"required"`
	Delay    float64 `mapstructure:"delay" validate:"gte=0"`
	Timeout  float64 `mapstructure:"timeout" validate:"gt=0"`

	Headless   bool `mapstructure:"headless"`
	Overwrite  bool `mapstructure:"overwrite"`
	Stealth    bool `mapstructure:"stealth"`
	NoProgress bool `mapstructure:"no_progress"`

	UserAgent     string `mapstructure:"user_agent"`
	ChromePath    string `mapstructure:"chrome_path"`
	Selectors     string `mapstructure:"selectors"`
	ScreenshotDir string `mapstructure:"screenshot_dir"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("cx", query.DefaultCX)
	v.SetDefault("endpoint", query.DefaultEndpoint)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("delay", DefaultDelay)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("stealth", true)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints. Every violation is listed in the
// returned error, which wraps ErrInvalid.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s %q is not a URL", field, fe.Value())
	case "excludesrune":
		return fmt.Sprintf("%s %q must not contain spaces", field, fe.Value())
	default:
		return fmt.Sprintf("%s fails %s", field, fe.Tag())
	}
}

// DelayDuration returns Delay as a time.Duration.
func (c Config) DelayDuration() time.Duration {
	return seconds(c.Delay)
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c Config) TimeoutDuration() time.Duration {
	return seconds(c.Timeout)
}

// SearchTemplate returns the search URL template for the configured
// endpoint and engine ID.
func (c Config) SearchTemplate() string {
	return query.Endpoint(c.Endpoint, c.CX)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
