package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/joho/godotenv"
)

type Config struct {
	Issuer          string                 // Issuer claim for session tokens (default: tenancy)
	PlatformVersion domain.PlatformVersion // Merchant account schema, v1 or v2 (default: v1)
	RoleVersion     string                 // Optional: write only "v1" or "v2" org admin rows; empty writes both
	InternalOrgID   string                 // Organization internal users are created in (default: org_internal)

	DBDriver     string // sqlite or postgres (default: sqlite)
	DatabaseFile string // SQLite database file (default: ./tenancy.db)
	DatabaseURL  string // Postgres connection string, required for the postgres driver

	MasterKeyPath  string // Optional: file holding master key material
	MasterKey      string // Optional: raw master key material, used when no path is set
	PepperFile     string // Password hashing pepper (default: ./pepper)
	SigningKeyPath string // Ed25519 PEM signing key, created on first start (default: ./signing.pem)
	BlocklistFile  string // Optional: replaces the embedded blocked email domain list

	KeyManagerURL     string        // Optional: enables user key transfer to the key manager
	KeyManagerTimeout time.Duration // Key manager request timeout (default: 10s)

	EmailEnabled          bool          // Invites are delivered by email (default: true)
	AllowedUnverifiedDays int           // Sign-in grace period before email verification (default: 1)
	PasswordValidityDays  int           // Days before a password rotation is requested (default: 90)
	TokenTTL              time.Duration // Session token lifetime (default: 1h)
	InviteTTL             time.Duration // Invite token lifetime (default: 168h)

	Env                  string        // Environment (dev, staging, production) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// LoadConfig reads the environment after loading ENV_FILE (default .env)
// when it exists. Variables already set in the environment win.
func LoadConfig() (Config, error) {
	envFile := getEnvOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Config{
		Issuer:          getEnvOrDefault("TENANCY_ISSUER", "tenancy"),
		PlatformVersion: domain.PlatformVersion(getEnvOrDefault("TENANCY_PLATFORM_VERSION", string(domain.PlatformV1))),
		RoleVersion:     os.Getenv("TENANCY_ROLE_VERSION"),
		InternalOrgID:   getEnvOrDefault("TENANCY_INTERNAL_ORG_ID", "org_internal"),

		DBDriver:     getEnvOrDefault("TENANCY_DB_DRIVER", "sqlite"),
		DatabaseFile: getEnvOrDefault("TENANCY_DATABASE_FILE", "tenancy.db"),
		DatabaseURL:  os.Getenv("TENANCY_DATABASE_URL"),

		MasterKeyPath:  os.Getenv("TENANCY_MASTER_KEY_PATH"),
		MasterKey:      os.Getenv("TENANCY_MASTER_KEY"),
		PepperFile:     getEnvOrDefault("TENANCY_PEPPER_FILE", "pepper"),
		SigningKeyPath: getEnvOrDefault("TENANCY_SIGNING_KEY_PATH", "signing.pem"),
		BlocklistFile:  os.Getenv("TENANCY_BLOCKLIST_FILE"),

		KeyManagerURL:     os.Getenv("TENANCY_KEY_MANAGER_URL"),
		KeyManagerTimeout: getEnvDurationOrDefault("TENANCY_KEY_MANAGER_TIMEOUT", 10*time.Second),

		EmailEnabled:          getEnvBoolOrDefault("TENANCY_EMAIL_ENABLED", true),
		AllowedUnverifiedDays: getEnvIntOrDefault("TENANCY_ALLOWED_UNVERIFIED_DAYS", 1),
		PasswordValidityDays:  getEnvIntOrDefault("TENANCY_PASSWORD_VALIDITY_DAYS", 90),
		TokenTTL:              getEnvDurationOrDefault("TENANCY_TOKEN_TTL", time.Hour),
		InviteTTL:             getEnvDurationOrDefault("TENANCY_INVITE_TTL", 7*24*time.Hour),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	var errs []error

	if _, err := domain.ParsePlatformVersion(string(c.PlatformVersion)); err != nil {
		errs = append(errs, err)
	}
	switch c.RoleVersion {
	case "", string(domain.RoleVersionV1), string(domain.RoleVersionV2):
	default:
		errs = append(errs, fmt.Errorf("unknown role version %q", c.RoleVersion))
	}
	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("TENANCY_DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.DBDriver))
	}
	if c.InternalOrgID == "" {
		errs = append(errs, errors.New("internal organization id must not be empty"))
	}

	return errors.Join(errs...)
}

// Production derives merchant ids from company names instead of time.
func (c Config) Production() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
