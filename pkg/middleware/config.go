package middleware

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// CORSConfig holds CORS policy settings. An origin of "*" allows any
// origin and cannot be combined with credentials.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the environment variables that override CORS fields.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Booleans always apply; slices apply
// when set and MaxAge when non-negative.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	for _, f := range []struct{ dst, src *[]string }{
		{&c.Origins, &overlay.Origins},
		{&c.AllowedMethods, &overlay.AllowedMethods},
		{&c.AllowedHeaders, &overlay.AllowedHeaders},
	} {
		if *f.src != nil {
			*f.dst = *f.src
		}
	}
	if overlay.MaxAge >= 0 {
		c.MaxAge = overlay.MaxAge
	}
}

// Allows reports whether origin may make cross-origin requests.
func (c *CORSConfig) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	return slices.Contains(c.Origins, "*") || slices.Contains(c.Origins, origin)
}

// WebSocketOrigins converts the configured origins into the host patterns
// a websocket handshake accepts. Entries without a scheme pass through.
func (c *CORSConfig) WebSocketOrigins() []string {
	patterns := make([]string, 0, len(c.Origins))
	for _, origin := range c.Origins {
		if origin == "" {
			continue
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, origin)
	}
	return patterns
}

func (c *CORSConfig) loadDefaults() {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}
}

func (c *CORSConfig) loadEnv(env *CORSEnv) error {
	return loadEnv(
		boolVar(env.Enabled, &c.Enabled),
		listVar(env.Origins, &c.Origins),
		listVar(env.AllowedMethods, &c.AllowedMethods),
		listVar(env.AllowedHeaders, &c.AllowedHeaders),
		boolVar(env.AllowCredentials, &c.AllowCredentials),
		intVar(env.MaxAge, &c.MaxAge),
	)
}

func (c *CORSConfig) validate() error {
	if c.AllowCredentials && slices.Contains(c.Origins, "*") {
		return errors.New("wildcard origin cannot allow credentials")
	}
	return nil
}

// RateLimitConfig holds token bucket settings for a module.
// A zero RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// RateLimitEnv names the environment variables that override rate limit fields.
type RateLimitEnv struct {
	Enabled           string
	RequestsPerSecond string
	Burst             string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RateLimitConfig) Finalize(env *RateLimitEnv) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *RateLimitConfig) Merge(overlay *RateLimitConfig) {
	c.Enabled = overlay.Enabled
	if overlay.RequestsPerSecond != 0 {
		c.RequestsPerSecond = overlay.RequestsPerSecond
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
}

// Limit returns the configured rate, or rate.Inf when disabled.
func (c *RateLimitConfig) Limit() rate.Limit {
	if !c.Enabled || c.RequestsPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(c.RequestsPerSecond)
}

func (c *RateLimitConfig) loadDefaults() {
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 20
	}
	if c.Burst == 0 {
		c.Burst = 40
	}
}

func (c *RateLimitConfig) loadEnv(env *RateLimitEnv) error {
	return loadEnv(
		boolVar(env.Enabled, &c.Enabled),
		floatVar(env.RequestsPerSecond, &c.RequestsPerSecond),
		intVar(env.Burst, &c.Burst),
	)
}

func (c *RateLimitConfig) validate() error {
	if c.RequestsPerSecond < 0 || math.IsNaN(c.RequestsPerSecond) {
		return fmt.Errorf("invalid requests_per_second: %v", c.RequestsPerSecond)
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1, got %d", c.Burst)
	}
	return nil
}

// envVar applies one environment variable to a field. name is empty when
// the field has no override.
type envVar struct {
	name  string
	apply func(string) error
}

func loadEnv(vars ...envVar) error {
	for _, v := range vars {
		if v.name == "" {
			continue
		}
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		if err := v.apply(raw); err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
	}
	return nil
}

func boolVar(name string, dst *bool) envVar {
	return envVar{name, func(s string) (err error) {
		*dst, err = strconv.ParseBool(s)
		return err
	}}
}

func intVar(name string, dst *int) envVar {
	return envVar{name, func(s string) (err error) {
		*dst, err = strconv.Atoi(s)
		return err
	}}
}

func floatVar(name string, dst *float64) envVar {
	return envVar{name, func(s string) (err error) {
		*dst, err = strconv.ParseFloat(s, 64)
		return err
	}}
}

func listVar(name string, dst *[]string) envVar {
	return envVar{name, func(s string) error {
		items := make([]string, 0)
		for item := range strings.SplitSeq(s, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		*dst = items
		return nil
	}}
}
