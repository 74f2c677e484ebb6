package config

import (
	"log"
	"strings"
	"time"
	_ "time/tzdata" // zone database for slim containers

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	MigrationsPath string

	// Upstream rate sources
	DailyAPI        string
	FallbackAPI     string
	UserAPI         string
	UserToken       string
	UserOrgID       string
	UpstreamTimeout time.Duration
	UpstreamRetries uint64

	// Access control
	CronKey            string
	AdminJWTSecret     string
	CORSAllowedOrigins []string
	RateLimit          string // ulule/limiter format, e.g. "120-M"

	// Scheduling
	Location      *time.Location
	IngestEnabled bool
	IngestHour    int
	IngestMinute  int

	// Dashboard sessions
	SessionTTL time.Duration
	SessionMax int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("FX_DAILY_API", "")
	viper.SetDefault("FX_FALLBACK_API", "https://api.exchangerate.host/latest")
	viper.SetDefault("FX_USER_API", "")
	viper.SetDefault("FX_USER_TOKEN", "")
	viper.SetDefault("FX_USER_ORG_ID", "")
	viper.SetDefault("UPSTREAM_TIMEOUT", "15s")
	viper.SetDefault("UPSTREAM_RETRIES", 2)
	viper.SetDefault("CRON_KEY", "")
	viper.SetDefault("ADMIN_JWT_SECRET", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:8080,http://localhost:3000,http://127.0.0.1:8080")
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("FX_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("INGEST_ENABLED", true)
	viper.SetDefault("INGEST_AT", "06:40")
	viper.SetDefault("SESSION_TTL", "30m")
	viper.SetDefault("SESSION_MAX", 1024)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.DailyAPI = viper.GetString("FX_DAILY_API")
	if cfg.DailyAPI == "" {
		log.Println("Warning: FX_DAILY_API not set. Daily ingest will rely on the fallback source.")
	}
	cfg.FallbackAPI = viper.GetString("FX_FALLBACK_API")
	cfg.UserAPI = viper.GetString("FX_USER_API")
	if cfg.UserAPI == "" {
		log.Println("Warning: FX_USER_API not set. User-defined rates will not be available.")
	}
	cfg.UserToken = viper.GetString("FX_USER_TOKEN")
	cfg.UserOrgID = viper.GetString("FX_USER_ORG_ID")

	timeoutStr := viper.GetString("UPSTREAM_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		timeout = 15 * time.Second
		log.Printf("Warning: Invalid value for UPSTREAM_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout)
	}
	cfg.UpstreamTimeout = timeout
	cfg.UpstreamRetries = viper.GetUint64("UPSTREAM_RETRIES")

	cfg.CronKey = viper.GetString("CRON_KEY")
	if cfg.CronKey == "" {
		log.Println("Warning: CRON_KEY not set. Cron-triggered ingest will be rejected.")
	}
	cfg.AdminJWTSecret = viper.GetString("ADMIN_JWT_SECRET")
	if cfg.AdminJWTSecret == "" {
		log.Println("Warning: ADMIN_JWT_SECRET not set. Admin routes will reject every request.")
	}
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	zone := viper.GetString("FX_TIMEZONE")
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
		log.Printf("Warning: Invalid value for FX_TIMEZONE ('%s'). Defaulting to UTC.\n", zone)
	}
	cfg.Location = loc

	cfg.IngestEnabled = viper.GetBool("INGEST_ENABLED")
	ingestAt := viper.GetString("INGEST_AT")
	at, err := time.Parse("15:04", ingestAt)
	if err != nil {
		at = time.Date(0, 1, 1, 6, 40, 0, 0, time.UTC)
		log.Printf("Warning: Invalid value for INGEST_AT ('%s'). Defaulting to 06:40.\n", ingestAt)
	}
	cfg.IngestHour, cfg.IngestMinute = at.Hour(), at.Minute()

	ttlStr := viper.GetString("SESSION_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		ttl = 30 * time.Minute
		log.Printf("Warning: Invalid value for SESSION_TTL ('%s'). Defaulting to %s.\n", ttlStr, ttl)
	}
	cfg.SessionTTL = ttl
	cfg.SessionMax = viper.GetInt("SESSION_MAX")
	if cfg.SessionMax <= 0 {
		cfg.SessionMax = 1024
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
