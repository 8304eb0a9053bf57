package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/scrapmetrics/internal/dashboard"
)

const (
	EnvDashboardWeekTrend      = "SCRAP_DASHBOARD_WEEK_TREND"
	EnvDashboardMonthTrend     = "SCRAP_DASHBOARD_MONTH_TREND"
	EnvDashboardQuarterTrend   = "SCRAP_DASHBOARD_QUARTER_TREND"
	EnvDashboardYearTrend      = "SCRAP_DASHBOARD_YEAR_TREND"
	EnvDashboardCustomSegments = "SCRAP_DASHBOARD_CUSTOM_SEGMENTS"
	EnvDashboardTopN           = "SCRAP_DASHBOARD_TOP_N"
	EnvDashboardLookbackWeeks  = "SCRAP_DASHBOARD_LOOKBACK_WEEKS"
)

// DashboardConfig tunes snapshot composition.
// A negative LookbackWeeks disables the last-week walk back.
type DashboardConfig struct {
	WeekTrend      int `toml:"week_trend"`
	MonthTrend     int `toml:"month_trend"`
	QuarterTrend   int `toml:"quarter_trend"`
	YearTrend      int `toml:"year_trend"`
	CustomSegments int `toml:"custom_segments"`
	TopN           int `toml:"top_n"`
	LookbackWeeks  int `toml:"lookback_weeks"`
}

// Options returns the dashboard options.
func (c *DashboardConfig) Options() dashboard.Options {
	return dashboard.Options{
		WeekTrend:      c.WeekTrend,
		MonthTrend:     c.MonthTrend,
		QuarterTrend:   c.QuarterTrend,
		YearTrend:      c.YearTrend,
		CustomSegments: c.CustomSegments,
		TopN:           c.TopN,
		LookbackWeeks:  max(c.LookbackWeeks, 0),
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *DashboardConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *DashboardConfig) Merge(overlay *DashboardConfig) {
	for _, f := range c.fields(overlay) {
		if *f.src != 0 {
			*f.dst = *f.src
		}
	}
}

type intField struct {
	env string
	dst *int
	src *int
}

func (c *DashboardConfig) fields(other *DashboardConfig) []intField {
	if other == nil {
		other = &DashboardConfig{}
	}
	return []intField{
		{EnvDashboardWeekTrend, &c.WeekTrend, &other.WeekTrend},
		{EnvDashboardMonthTrend, &c.MonthTrend, &other.MonthTrend},
		{EnvDashboardQuarterTrend, &c.QuarterTrend, &other.QuarterTrend},
		{EnvDashboardYearTrend, &c.YearTrend, &other.YearTrend},
		{EnvDashboardCustomSegments, &c.CustomSegments, &other.CustomSegments},
		{EnvDashboardTopN, &c.TopN, &other.TopN},
		{EnvDashboardLookbackWeeks, &c.LookbackWeeks, &other.LookbackWeeks},
	}
}

func (c *DashboardConfig) loadDefaults() {
	defaults := dashboard.DefaultOptions()
	fallback := (&DashboardConfig{
		WeekTrend:      defaults.WeekTrend,
		MonthTrend:     defaults.MonthTrend,
		QuarterTrend:   defaults.QuarterTrend,
		YearTrend:      defaults.YearTrend,
		CustomSegments: defaults.CustomSegments,
		TopN:           defaults.TopN,
		LookbackWeeks:  defaults.LookbackWeeks,
	})
	for _, f := range c.fields(fallback) {
		if *f.dst == 0 {
			*f.dst = *f.src
		}
	}
}

func (c *DashboardConfig) loadEnv() error {
	for _, f := range c.fields(nil) {
		if v := os.Getenv(f.env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", f.env, err)
			}
			*f.dst = n
		}
	}
	return nil
}

func (c *DashboardConfig) validate() error {
	for name, v := range map[string]int{
		"week_trend":      c.WeekTrend,
		"month_trend":     c.MonthTrend,
		"quarter_trend":   c.QuarterTrend,
		"year_trend":      c.YearTrend,
		"custom_segments": c.CustomSegments,
		"top_n":           c.TopN,
	} {
		if v < 1 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	return nil
}
