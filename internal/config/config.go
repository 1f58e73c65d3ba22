package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"timelapse/internal/logger"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix   = "TIMELAPSE"
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

// ClockTime is an hour and minute of the day.
type ClockTime struct {
	Hour   int
	Minute int
}

// Date is a calendar date. Month is 1-based.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// IsZero reports whether the date was left unset.
func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before compares dates lexicographically on year, month, day.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Config is the run configuration. It is built once at startup and not
// mutated afterwards.
type Config struct {
	Day      DayConfig      `mapstructure:"day"`
	Run      RunConfig      `mapstructure:"run"`
	Interval IntervalConfig `mapstructure:"interval"`
	Exposure ExposureConfig `mapstructure:"exposure"`
	Frame    FrameConfig    `mapstructure:"frame"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Pacing   PacingConfig   `mapstructure:"pacing"`
	Focus    FocusConfig    `mapstructure:"focus"`
	Log      LogConfig      `mapstructure:"log"`

	// parsed forms of the string fields above, filled by Validate
	DayStart  ClockTime `mapstructure:"-"`
	DayEnd    ClockTime `mapstructure:"-"`
	StartDate Date      `mapstructure:"-"`
	EndDate   Date      `mapstructure:"-"`
}

type DayConfig struct {
	Start string `mapstructure:"start"` // HH:MM
	End   string `mapstructure:"end"`   // HH:MM
}

type RunConfig struct {
	StartDate        string `mapstructure:"start_date"` // YYYY-MM-DD
	EndDate          string `mapstructure:"end_date"`   // YYYY-MM-DD
	EnforceStartDate bool   `mapstructure:"enforce_start_date"`
}

type IntervalConfig struct {
	Day   time.Duration `mapstructure:"day"`
	Night time.Duration `mapstructure:"night"`
}

type ExposureConfig struct {
	MaxGain     float64 `mapstructure:"max_gain"`
	MaxFraction float64 `mapstructure:"max_fraction"` // share of the interval the shutter may stay open
}

type FrameConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

type PacingConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type FocusConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LogLevel returns the configured level as a logger.Level.
func (c *Config) LogLevel() logger.Level {
	return logger.ParseLevel(c.Log.Level)
}

// setDefaults registers the values the controller shipped with.
func setDefaults(v *viper.Viper) {
	v.SetDefault("day.start", "05:00")
	v.SetDefault("day.end", "19:00")
	v.SetDefault("run.start_date", "")
	v.SetDefault("run.end_date", "")
	v.SetDefault("run.enforce_start_date", false)
	v.SetDefault("interval.day", time.Second)
	v.SetDefault("interval.night", 10*time.Second)
	v.SetDefault("exposure.max_gain", 4.0)
	v.SetDefault("exposure.max_fraction", 0.25)
	v.SetDefault("frame.width", 1296)
	v.SetDefault("frame.height", 984)
	v.SetDefault("storage.dir", "/home/user/MyDocs/DCIM")
	v.SetDefault("pacing.delay", time.Millisecond)
	v.SetDefault("focus.max_attempts", 1000)
	v.SetDefault("focus.poll_interval", time.Millisecond)
	v.SetDefault("log.level", string(logger.ErrorLevel))
}

// RegisterFlags adds the command-line options understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to config file (default: configs/config.yml)")
	fs.String("log-level", "", "log level: trace, debug or error")
}

// Load reads configs/config.yml (optional), TIMELAPSE_* environment
// variables and the flags registered by RegisterFlags, then validates.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if f := fs.Lookup("log-level"); f != nil {
			if err := v.BindPFlag("log.level", f); err != nil {
				return nil, fmt.Errorf("bind log-level flag: %w", err)
			}
		}
	}

	explicit := ""
	if fs != nil {
		explicit, _ = fs.GetString("config")
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration and fills the parsed fields.
func (c *Config) Validate() error {
	var err error
	if c.DayStart, err = parseClock(c.Day.Start); err != nil {
		return fmt.Errorf("day.start: %w", err)
	}
	if c.DayEnd, err = parseClock(c.Day.End); err != nil {
		return fmt.Errorf("day.end: %w", err)
	}
	if c.DayEnd.Hour < c.DayStart.Hour ||
		(c.DayEnd.Hour == c.DayStart.Hour && c.DayEnd.Minute < c.DayStart.Minute) {
		return fmt.Errorf("day.end %s is before day.start %s", c.Day.End, c.Day.Start)
	}

	if c.Run.EndDate == "" {
		return errors.New("run.end_date is required")
	}
	if c.EndDate, err = parseDate(c.Run.EndDate); err != nil {
		return fmt.Errorf("run.end_date: %w", err)
	}
	if c.Run.StartDate != "" {
		if c.StartDate, err = parseDate(c.Run.StartDate); err != nil {
			return fmt.Errorf("run.start_date: %w", err)
		}
		if c.EndDate.Before(c.StartDate) {
			return fmt.Errorf("run.start_date %s is after run.end_date %s", c.StartDate, c.EndDate)
		}
	} else if c.Run.EnforceStartDate {
		return errors.New("run.enforce_start_date needs run.start_date")
	}

	if c.Interval.Day <= 0 || c.Interval.Night <= 0 {
		return fmt.Errorf("intervals must be positive: day=%s night=%s", c.Interval.Day, c.Interval.Night)
	}
	if c.Exposure.MaxGain <= 0 {
		return fmt.Errorf("exposure.max_gain must be positive: %v", c.Exposure.MaxGain)
	}
	if c.Exposure.MaxFraction <= 0 || c.Exposure.MaxFraction > 1 {
		return fmt.Errorf("exposure.max_fraction must be in (0,1]: %v", c.Exposure.MaxFraction)
	}
	if c.Frame.Width <= 0 || c.Frame.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", c.Frame.Width, c.Frame.Height)
	}
	if c.Storage.Dir == "" {
		return errors.New("storage.dir is required")
	}
	if c.Pacing.Delay <= 0 {
		return fmt.Errorf("pacing.delay must be positive: %s", c.Pacing.Delay)
	}
	if c.Focus.MaxAttempts <= 0 {
		return fmt.Errorf("focus.max_attempts must be positive: %d", c.Focus.MaxAttempts)
	}
	if !logger.Level(strings.ToLower(c.Log.Level)).Valid() {
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	return nil
}

func parseClock(s string) (ClockTime, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func parseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}
