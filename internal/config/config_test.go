package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"timelapse/internal/logger"

	"github.com/spf13/pflag"
)

func validConfig() *Config {
	return &Config{
		Day:      DayConfig{Start: "05:00", End: "19:00"},
		Run:      RunConfig{StartDate: "2011-01-29", EndDate: "2011-02-05"},
		Interval: IntervalConfig{Day: time.Second, Night: 10 * time.Second},
		Exposure: ExposureConfig{MaxGain: 4, MaxFraction: 0.25},
		Frame:    FrameConfig{Width: 1296, Height: 984},
		Storage:  StorageConfig{Dir: "/tmp/dcim"},
		Pacing:   PacingConfig{Delay: time.Millisecond},
		Focus:    FocusConfig{MaxAttempts: 10, PollInterval: time.Millisecond},
		Log:      LogConfig{Level: "error"},
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func TestValidate_ParsesClockAndDates(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DayStart != (ClockTime{Hour: 5}) || cfg.DayEnd != (ClockTime{Hour: 19}) {
		t.Fatalf("day window parsed as %+v-%+v", cfg.DayStart, cfg.DayEnd)
	}
	if cfg.EndDate != (Date{Year: 2011, Month: time.February, Day: 5}) {
		t.Fatalf("end date parsed as %+v", cfg.EndDate)
	}
	if cfg.StartDate != (Date{Year: 2011, Month: time.January, Day: 29}) {
		t.Fatalf("start date parsed as %+v", cfg.StartDate)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad day start", func(c *Config) { c.Day.Start = "5am" }},
		{"day end before start", func(c *Config) { c.Day.End = "04:30" }},
		{"missing end date", func(c *Config) { c.Run.EndDate = "" }},
		{"bad end date", func(c *Config) { c.Run.EndDate = "2011/02/05" }},
		{"start after end", func(c *Config) { c.Run.StartDate = "2011-03-01" }},
		{"enforce without start", func(c *Config) { c.Run.StartDate = ""; c.Run.EnforceStartDate = true }},
		{"zero day interval", func(c *Config) { c.Interval.Day = 0 }},
		{"negative night interval", func(c *Config) { c.Interval.Night = -time.Second }},
		{"zero gain", func(c *Config) { c.Exposure.MaxGain = 0 }},
		{"fraction above one", func(c *Config) { c.Exposure.MaxFraction = 1.5 }},
		{"zero fraction", func(c *Config) { c.Exposure.MaxFraction = 0 }},
		{"zero width", func(c *Config) { c.Frame.Width = 0 }},
		{"empty storage dir", func(c *Config) { c.Storage.Dir = "" }},
		{"zero pacing", func(c *Config) { c.Pacing.Delay = 0 }},
		{"zero focus attempts", func(c *Config) { c.Focus.MaxAttempts = 0 }},
		{"unknown level", func(c *Config) { c.Log.Level = "verbose" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoad_FromFileWithDefaults(t *testing.T) {
	path := writeConfig(t, `
run:
  end_date: "2011-02-05"
interval:
  night: 20s
`)
	cfg, err := Load(newFlags(t, "--config", path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interval.Day != time.Second {
		t.Errorf("day interval = %s, want default 1s", cfg.Interval.Day)
	}
	if cfg.Interval.Night != 20*time.Second {
		t.Errorf("night interval = %s, want 20s", cfg.Interval.Night)
	}
	if cfg.Exposure.MaxGain != 4 || cfg.Exposure.MaxFraction != 0.25 {
		t.Errorf("exposure defaults not applied: %+v", cfg.Exposure)
	}
	if cfg.Frame.Width != 1296 || cfg.Frame.Height != 984 {
		t.Errorf("frame defaults not applied: %+v", cfg.Frame)
	}
	if cfg.LogLevel() != logger.ErrorLevel {
		t.Errorf("log level = %q, want error", cfg.LogLevel())
	}
}

func TestLoad_FlagOverridesFile(t *testing.T) {
	path := writeConfig(t, `
run:
  end_date: "2011-02-05"
log:
  level: error
`)
	cfg, err := Load(newFlags(t, "--config", path, "--log-level", "trace"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel() != logger.TraceLevel {
		t.Fatalf("log level = %q, want trace", cfg.LogLevel())
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
run:
  end_date: "2011-02-05"
`)
	t.Setenv("TIMELAPSE_RUN_END_DATE", "2012-06-30")
	t.Setenv("TIMELAPSE_STORAGE_DIR", "/data/frames")

	cfg, err := Load(newFlags(t, "--config", path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EndDate != (Date{Year: 2012, Month: time.June, Day: 30}) {
		t.Errorf("end date = %s, want 2012-06-30", cfg.EndDate)
	}
	if cfg.Storage.Dir != "/data/frames" {
		t.Errorf("storage dir = %q", cfg.Storage.Dir)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "nope.yml")))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	path := writeConfig(t, `
run:
  end_date: "2011-02-05"
exposure:
  max_fraction: 2
`)
	if _, err := Load(newFlags(t, "--config", path)); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDateBefore(t *testing.T) {
	a := Date{Year: 2011, Month: time.January, Day: 31}
	b := Date{Year: 2011, Month: time.February, Day: 1}
	if !a.Before(b) || b.Before(a) || a.Before(a) {
		t.Fatal("Date.Before ordering is wrong")
	}
}
