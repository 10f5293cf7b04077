// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, storage, locking, rate limiting, and
// observability.
//
// An optional TOML file named by CONFIG_FILE supplies base values; any
// environment variable that is set wins over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-adoption-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DBDriver      string        // sqlite|postgres
	DBPath        string        // SQLite path
	DatabaseURL   string        // Postgres DSN
	DBAutoMigrate bool          // run schema migration on startup
	DBSlowQuery   time.Duration // GORM slow query threshold

	// Locking
	RedisURL string        // optional; enables the distributed animal lock
	LockTTL  time.Duration // lease of a distributed lock

	// Adoption / search
	SearchDefaultPageSize int
	SearchMaxPageSize     int
	NoteMaxRunes          int

	// ConfigFile is the TOML overlay that was applied, if any.
	ConfigFile string

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// Load builds the configuration from the environment over the optional
// TOML file named by CONFIG_FILE, then normalizes and validates it.
func Load() (Config, error) {
	var src source
	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path != "" {
		var err error
		if src, err = readFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg := src.load()
	cfg.ConfigFile = path
	cfg.normalize()
	return cfg, cfg.Validate()
}

func (src source) load() Config {
	return Config{
		Port:              src.getenv("PORT", "8080"),
		ReadTimeout:       src.getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: src.getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      src.getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       src.getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    src.getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           src.getenv("GIN_MODE", "release"),

		LogLevel:       src.getenv("LOG_LEVEL", "info"),
		LogPretty:      src.getbool("LOG_PRETTY", false),
		SwaggerEnabled: src.getbool("SWAGGER_ENABLED", false),
		APIBasePath:    src.getenv("API_BASE_PATH", "/api/v1"),

		DBDriver:      src.getenv("DB_DRIVER", "sqlite"),
		DBPath:        src.getenv("DB_PATH", "adoption.db"),
		DatabaseURL:   src.getenv("DATABASE_URL", ""),
		DBAutoMigrate: src.getbool("DB_AUTO_MIGRATE", true),
		DBSlowQuery:   src.getdur("DB_SLOW_QUERY", 200*time.Millisecond),

		RedisURL: src.getenv("REDIS_URL", ""),
		LockTTL:  src.getdur("LOCK_TTL", 10*time.Second),

		SearchDefaultPageSize: src.getint("SEARCH_DEFAULT_PAGE_SIZE", 20),
		SearchMaxPageSize:     src.getint("SEARCH_MAX_PAGE_SIZE", 100),
		NoteMaxRunes:          src.getint("NOTE_MAX_RUNES", maxNoteRunes),

		RateRPS:   src.getfloat("RATE_RPS", 5.0),
		RateBurst: src.getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(src.getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: src.getbool("ENABLE_HSTS", false),
			HSTSMaxAge: src.getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: src.getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     src.getbool("OTEL_ENABLED", false),
			Endpoint:    src.getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    src.getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: src.getenv("OTEL_SERVICE_NAME", "go-adoption-backend"),
			SampleRatio: src.getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}
}

// maxNoteRunes is the hard ceiling on adoption request notes.
const maxNoteRunes = 500

// normalize lower-cases enum-like values, maps aliases and repairs the API
// base path. Unknown Gin modes fall back to release.
func (c *Config) normalize() {
	c.GinMode = strings.ToLower(strings.TrimSpace(c.GinMode))
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.APIBasePath = normalizeBasePath(c.APIBasePath)
}

// Validate reports every invalid setting at once, joined into one error.
func (c Config) Validate() error {
	var errs []error
	check := func(bad bool, msg string) {
		if bad {
			errs = append(errs, errors.New(msg))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of debug, info, warn, error, fatal, panic", c.LogLevel))
	}
	check(strings.TrimSpace(c.Port) == "", "PORT must not be empty")
	check(c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0,
		"READ_TIMEOUT, READ_HEADER_TIMEOUT, WRITE_TIMEOUT and IDLE_TIMEOUT must be positive")
	check(c.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0")

	switch c.DBDriver {
	case "sqlite":
		check(strings.TrimSpace(c.DBPath) == "", "DB_PATH must not be empty")
	case "postgres":
		check(strings.TrimSpace(c.DatabaseURL) == "", "DATABASE_URL is required when DB_DRIVER=postgres")
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q must be sqlite or postgres", c.DBDriver))
	}
	check(c.DBSlowQuery < 0, "DB_SLOW_QUERY must be >= 0")
	check(c.LockTTL <= 0, "LOCK_TTL must be > 0")

	check(c.SearchDefaultPageSize < 1 || c.SearchMaxPageSize < c.SearchDefaultPageSize,
		"SEARCH_DEFAULT_PAGE_SIZE must be >= 1 and <= SEARCH_MAX_PAGE_SIZE")
	check(c.NoteMaxRunes < 1 || c.NoteMaxRunes > maxNoteRunes,
		fmt.Sprintf("NOTE_MAX_RUNES must be between 1 and %d", maxNoteRunes))
	check(c.IdempotencyTTL <= 0, "IDEMPOTENCY_TTL must be > 0")

	check(c.RateRPS < 0, "RATE_RPS must be >= 0")
	check(c.RateBurst < 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0")
	check(c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	check(c.OTEL.Enabled && strings.TrimSpace(c.OTEL.Endpoint) == "", "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED")

	return errors.Join(errs...)
}

// ---- sources ----

// source holds values read from the TOML overlay, keyed like the
// environment variables they stand in for.
type source map[string]string

// readFile decodes a TOML overlay. Keys are matched case-insensitively
// against variable names, and nested tables join with '_', so
//
//	[db]
//	driver = "postgres"
//
// provides DB_DRIVER.
func readFile(path string) (source, error) {
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	out := source{}
	flatten(out, "", raw)
	return out, nil
}

func flatten(dst source, prefix string, m map[string]any) {
	for k, v := range m {
		key := strings.ToUpper(k)
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch t := v.(type) {
		case map[string]any:
			flatten(dst, key, t)
		case []any:
			parts := make([]string, 0, len(t))
			for _, p := range t {
				parts = append(parts, fmt.Sprint(p))
			}
			dst[key] = strings.Join(parts, ",")
		case time.Time:
			dst[key] = t.Format(time.RFC3339)
		default:
			dst[key] = fmt.Sprint(t)
		}
	}
}

// lookup prefers a non-empty environment variable over the overlay.
func (src source) lookup(k string) (string, bool) {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v, true
	}
	v, ok := src[k]
	return v, ok && v != ""
}

// ---- helpers ----

func (src source) getenv(k, def string) string {
	if v, ok := src.lookup(k); ok {
		return v
	}
	return def
}

func (src source) getfloat(k string, def float64) float64 {
	if v, ok := src.lookup(k); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func (src source) getint(k string, def int) int {
	if v, ok := src.lookup(k); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func (src source) getbool(k string, def bool) bool {
	if v, ok := src.lookup(k); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func (src source) getdur(k string, def time.Duration) time.Duration {
	if v, ok := src.lookup(k); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
