package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	ics "github.com/arran4/handcal"
)

// Config is read once from the environment and never changes afterwards.
type Config struct {
	addr     string
	location *time.Location
	tzid     string
	filename string
	charset  string
	logLevel slog.Level
}

// Load reads the given .env files (".env" when none are given) into the
// process environment, then builds a Config from it. Missing .env files are
// not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}
	return New(os.Getenv)
}

// New builds a Config from getenv.
func New(getenv func(string) string) (*Config, error) {
	c := &Config{
		addr:     getenv("HANDCAL_ADDR"),
		tzid:     getenv("HANDCAL_TZID"),
		filename: getenv("HANDCAL_FILENAME"),
		charset:  getenv("HANDCAL_CHARSET"),
		location: time.Local,
		logLevel: slog.LevelInfo,
	}
	if c.addr == "" {
		c.addr = ":8080"
	}
	if c.tzid == "" {
		c.tzid = ics.DefaultTZID
	}
	if c.filename == "" {
		c.filename = ics.DefaultFilename
	}
	if c.charset == "" {
		c.charset = ics.DefaultCharset
	}

	switch tz := getenv("HANDCAL_TIMEZONE"); tz {
	case "", "Local":
	case "UTC":
		c.location = time.UTC
	default:
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid HANDCAL_TIMEZONE %q: %w", tz, err)
		}
		c.location = loc
	}

	if lvl := getenv("HANDCAL_LOG_LEVEL"); lvl != "" {
		if err := c.logLevel.UnmarshalText([]byte(strings.ToUpper(lvl))); err != nil {
			return nil, fmt.Errorf("invalid HANDCAL_LOG_LEVEL %q: %w", lvl, err)
		}
	}
	return c, nil
}

// Get HANDCAL_ADDR env, default to :8080
func (c *Config) Addr() string {
	return c.addr
}

// Get HANDCAL_TIMEZONE env, default to the local zone
func (c *Config) Location() *time.Location {
	return c.location
}

// Get HANDCAL_TZID env, default to ics.DefaultTZID
func (c *Config) TZID() string {
	return c.tzid
}

// Get HANDCAL_FILENAME env, default to ics.DefaultFilename
func (c *Config) Filename() string {
	return c.filename
}

// Get HANDCAL_CHARSET env, default to ics.DefaultCharset
func (c *Config) Charset() string {
	return c.charset
}

// Get HANDCAL_LOG_LEVEL env, default to info
func (c *Config) LogLevel() slog.Level {
	return c.logLevel
}

// EventOps returns the ics.NewEvent options implied by the configuration.
func (c *Config) EventOps() []any {
	return []any{
		ics.WithLocation(c.location),
		ics.WithTZID(c.tzid),
	}
}

// LogValue keeps the whole configuration on one structured log line.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", c.addr),
		slog.String("timezone", c.location.String()),
		slog.String("tzid", c.tzid),
		slog.String("filename", c.filename),
		slog.String("charset", c.charset),
		slog.String("log_level", c.logLevel.String()),
	)
}
