package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
)

const (
	EnvMetricsDefaultTarget  = "SCRAP_METRICS_DEFAULT_TARGET"
	EnvMetricsWeeklyTarget   = "SCRAP_METRICS_WEEKLY_TARGET"
	EnvMetricsMonthlyTargets = "SCRAP_METRICS_MONTHLY_TARGETS"
	EnvMetricsImprovement    = "SCRAP_METRICS_IMPROVEMENT"
	EnvMetricsHighVariance   = "SCRAP_METRICS_HIGH_VARIANCE"
	EnvMetricsStableBand     = "SCRAP_METRICS_STABLE_BAND"
	EnvMetricsAbruptChange   = "SCRAP_METRICS_ABRUPT_CHANGE"
	EnvMetricsTrendWindow    = "SCRAP_METRICS_TREND_WINDOW"
)

// MetricsConfig holds target rates and rule thresholds. MonthlyTargets
// lists January through December; a WeeklyTarget of zero defers weeks to
// the monthly table. Unset float fields are nil, so an explicit zero in a
// file, overlay, or environment variable is kept.
type MetricsConfig struct {
	DefaultTarget  *float64  `toml:"default_target"`
	WeeklyTarget   *float64  `toml:"weekly_target"`
	MonthlyTargets []float64 `toml:"monthly_targets"`
	Improvement    *float64  `toml:"improvement"`
	HighVariance   *float64  `toml:"high_variance"`
	StableBand     *float64  `toml:"stable_band"`
	AbruptChange   *float64  `toml:"abrupt_change"`
	TrendWindow    int       `toml:"trend_window"`
}

// Value returns the immutable engine configuration. Call it after Finalize.
func (c *MetricsConfig) Value() metrics.Config {
	var monthly [12]float64
	copy(monthly[:], c.MonthlyTargets)
	return metrics.Config{
		Targets: metrics.Targets{
			Monthly: monthly,
			Weekly:  deref(c.WeeklyTarget),
			Default: deref(c.DefaultTarget),
		},
		Thresholds: metrics.Thresholds{
			Improvement:  deref(c.Improvement),
			HighVariance: deref(c.HighVariance),
			StableBand:   deref(c.StableBand),
			AbruptChange: deref(c.AbruptChange),
			TrendWindow:  c.TrendWindow,
		},
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *MetricsConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites fields set in overlay. TrendWindow zero means unset
// since it is never valid.
func (c *MetricsConfig) Merge(overlay *MetricsConfig) {
	for _, f := range c.floats(overlay) {
		if *f.src != nil {
			*f.dst = *f.src
		}
	}
	if len(overlay.MonthlyTargets) > 0 {
		c.MonthlyTargets = overlay.MonthlyTargets
	}
	if overlay.TrendWindow != 0 {
		c.TrendWindow = overlay.TrendWindow
	}
}

type floatField struct {
	env string
	dst **float64
	src **float64
}

func (c *MetricsConfig) floats(other *MetricsConfig) []floatField {
	if other == nil {
		other = &MetricsConfig{}
	}
	return []floatField{
		{EnvMetricsDefaultTarget, &c.DefaultTarget, &other.DefaultTarget},
		{EnvMetricsWeeklyTarget, &c.WeeklyTarget, &other.WeeklyTarget},
		{EnvMetricsImprovement, &c.Improvement, &other.Improvement},
		{EnvMetricsHighVariance, &c.HighVariance, &other.HighVariance},
		{EnvMetricsStableBand, &c.StableBand, &other.StableBand},
		{EnvMetricsAbruptChange, &c.AbruptChange, &other.AbruptChange},
	}
}

func (c *MetricsConfig) loadDefaults() {
	targets := metrics.DefaultTargets()
	th := metrics.DefaultThresholds()

	fallback := &MetricsConfig{
		DefaultTarget: &targets.Default,
		WeeklyTarget:  &targets.Weekly,
		Improvement:   &th.Improvement,
		HighVariance:  &th.HighVariance,
		StableBand:    &th.StableBand,
		AbruptChange:  &th.AbruptChange,
	}
	for _, f := range c.floats(fallback) {
		if *f.dst == nil {
			v := **f.src
			*f.dst = &v
		}
	}
	if len(c.MonthlyTargets) == 0 {
		c.MonthlyTargets = targets.Monthly[:]
	}
	if c.TrendWindow == 0 {
		c.TrendWindow = th.TrendWindow
	}
}

func (c *MetricsConfig) loadEnv() error {
	for _, f := range c.floats(nil) {
		if v := os.Getenv(f.env); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", f.env, err)
			}
			*f.dst = &parsed
		}
	}

	if v := os.Getenv(EnvMetricsTrendWindow); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMetricsTrendWindow, err)
		}
		c.TrendWindow = n
	}

	if v := os.Getenv(EnvMetricsMonthlyTargets); v != "" {
		parts := strings.Split(v, ",")
		targets := make([]float64, 0, len(parts))
		for _, p := range parts {
			t, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return fmt.Errorf("%s: %w", EnvMetricsMonthlyTargets, err)
			}
			targets = append(targets, t)
		}
		c.MonthlyTargets = targets
	}
	return nil
}

func (c *MetricsConfig) validate() error {
	if len(c.MonthlyTargets) != 12 {
		return fmt.Errorf("monthly_targets must list 12 values, got %d", len(c.MonthlyTargets))
	}
	for i, t := range c.MonthlyTargets {
		if t < 0 {
			return fmt.Errorf("monthly_targets[%d] must not be negative", i)
		}
	}
	if deref(c.DefaultTarget) < 0 || deref(c.WeeklyTarget) < 0 {
		return fmt.Errorf("targets must not be negative")
	}
	for _, f := range c.floats(nil)[2:] {
		if deref(*f.dst) < 0 {
			return fmt.Errorf("thresholds must not be negative")
		}
	}
	if c.TrendWindow < 3 {
		return fmt.Errorf("trend_window must be at least 3, got %d", c.TrendWindow)
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
