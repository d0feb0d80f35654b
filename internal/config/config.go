package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const dateFormat = "2006-01-02"

type Config struct {
	DataDir         string
	IDMapPath       string
	InstrumentsPath string
	JournalPath     string
	LogLevel        string

	Endpoint    string
	UserAgent   string
	HTTPTimeout time.Duration

	StartDate time.Time
	Timezone  string

	EquityCutoffHour int
	ForexCutoffHour  int
	// ForexCutoffInverted keeps today's forex session only up to ForexCutoffHour.
	ForexCutoffInverted bool
	ForexPrefix         string
	IndexPrefix         string

	ChunkDays    int
	MaxFailures  int
	SuccessDelay time.Duration
	RetryDelay   time.Duration

	ExportDir     string
	ExportWorkers int

	HTTPAddr string
}

func Load() Config {
	return Config{
		DataDir:         getEnv("DATA_DIR", "data"),
		IDMapPath:       getEnv("IDMAP_PATH", "config/investingcom.ids"),
		InstrumentsPath: getEnv("INSTRUMENTS_PATH", "config/instruments.yaml"),
		JournalPath:     getEnv("JOURNAL_PATH", "data/journal.db"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		Endpoint:    getEnv("ENDPOINT", "https://www.investing.com/instruments/HistoricalDataAjax"),
		UserAgent:   getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		StartDate: getEnvDate("START_DATE", time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)),
		Timezone:  getEnv("TIMEZONE", "Asia/Kuala_Lumpur"),

		EquityCutoffHour:    getEnvInt("EQUITY_CUTOFF_HOUR", 18),
		ForexCutoffHour:     getEnvInt("FOREX_CUTOFF_HOUR", 22),
		ForexCutoffInverted: getEnvBool("FOREX_CUTOFF_INVERTED", true),
		ForexPrefix:         getEnv("FOREX_PREFIX", "USD"),
		IndexPrefix:         getEnv("INDEX_PREFIX", "FTFBM"),

		ChunkDays:    getEnvInt("CHUNK_DAYS", 66),
		MaxFailures:  getEnvInt("MAX_FAILURES", 5),
		SuccessDelay: getEnvDuration("SUCCESS_DELAY", 2*time.Second),
		RetryDelay:   getEnvDuration("RETRY_DELAY", 3*time.Second),

		ExportDir:     getEnv("EXPORT_DIR", "data/parquet"),
		ExportWorkers: getEnvInt("EXPORT_WORKERS", 4),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}
}

// Location resolves Timezone, the calendar used to decide what "today" is.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) Validate() error {
	switch {
	case c.DataDir == "":
		return fmt.Errorf("DATA_DIR is required")
	case c.ChunkDays <= 0:
		return fmt.Errorf("CHUNK_DAYS must be positive, got %d", c.ChunkDays)
	case c.MaxFailures <= 0:
		return fmt.Errorf("MAX_FAILURES must be positive, got %d", c.MaxFailures)
	case c.EquityCutoffHour < 0 || c.EquityCutoffHour > 24:
		return fmt.Errorf("EQUITY_CUTOFF_HOUR out of range: %d", c.EquityCutoffHour)
	case c.ForexCutoffHour < 0 || c.ForexCutoffHour > 24:
		return fmt.Errorf("FOREX_CUTOFF_HOUR out of range: %d", c.ForexCutoffHour)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvDate(key string, fallback time.Time) time.Time {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	t, err := ParseDate(v)
	if err != nil {
		return fallback
	}
	return t
}
