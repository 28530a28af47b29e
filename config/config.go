package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yeremiapane/petcare-reservation/cache"
	"github.com/yeremiapane/petcare-reservation/utils"
)

type DBConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	// DSN overrides every other field when set.
	DSN string
}

type Config struct {
	Port                string
	GinMode             string
	DB                  DBConfig
	RedisURL            string
	CacheTTLs           cache.TTLs
	ReservationWindow   time.Duration
	EnforceServiceCarer bool
	JWTSecret           string
	CORSAllowedOrigins  []string
	RateLimitRPS        float64
	RateLimitBurst      int
	Logger              utils.LoggerConfig
}

// Load reads the configuration from the environment. A malformed value is an error, a missing one takes the default.
func Load() (*Config, error) {
	var errs []string
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	ttls := cache.DefaultTTLs()
	var err error

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		GinMode:  getEnvOrDefault("GIN_MODE", "debug"),
		RedisURL: os.Getenv("REDIS_URL"),
		DB: DBConfig{
			Driver:   strings.ToLower(getEnvOrDefault("DB_DRIVER", "postgres")),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnvOrDefault("DB_NAME", "petcare"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
			DSN:      os.Getenv("DB_DSN"),
		},
		JWTSecret:          os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		Logger: utils.LoggerConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	cfg.DB.Port, err = getEnvAsInt("DB_PORT", defaultPort(cfg.DB.Driver))
	collect(err)
	ttls.Default, err = getEnvAsDuration("CACHE_TTL_DEFAULT", ttls.Default)
	collect(err)
	ttls.Reservations, err = getEnvAsDuration("CACHE_TTL_RESERVATIONS", ttls.Reservations)
	collect(err)
	ttls.ReservationServices, err = getEnvAsDuration("CACHE_TTL_RESERVATION_SERVICES", ttls.ReservationServices)
	collect(err)
	cfg.CacheTTLs = ttls
	cfg.ReservationWindow, err = getEnvAsDuration("RESERVATION_WINDOW", 2*time.Hour)
	collect(err)
	cfg.EnforceServiceCarer, err = getEnvAsBool("ENFORCE_SERVICE_CARER", true)
	collect(err)
	cfg.RateLimitRPS, err = getEnvAsFloat("RATE_LIMIT_RPS", 20)
	collect(err)
	cfg.RateLimitBurst, err = getEnvAsInt("RATE_LIMIT_BURST", 40)
	collect(err)

	switch cfg.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("unsupported DB_DRIVER %q", cfg.DB.Driver))
	}
	if cfg.ReservationWindow <= 0 {
		errs = append(errs, "RESERVATION_WINDOW must be positive")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func defaultPort(driver string) int {
	if driver == "mysql" {
		return 3306
	}
	return 5432
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %q is not an integer", key, value)
	}
	return n, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %q is not a number", key, value)
	}
	return f, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %q is not a boolean", key, value)
	}
	return b, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %q is not a duration", key, value)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
