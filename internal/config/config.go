package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort   string
	GinMode      string
	LogLevel     string
	LogFormat    string
	ExamDir      string
	AuditLogPath string
	// ExamDuration is the fixed length of a session. The deadline is computed
	// once at session start and never recomputed.
	ExamDuration time.Duration
	// ViolationThreshold is the number of integrity violations that aborts a
	// session. Zero disables the threshold (violations are only logged).
	ViolationThreshold int
	// SweepInterval is how often the integrity monitor runs its process sweep.
	SweepInterval time.Duration
	// CredentialHash is the bcrypt hash the exam credential is checked
	// against. Empty means nothing was provisioned; the server falls back to
	// a dev default and logs a warning.
	CredentialHash string
	JWTSecret      string
	JWTExpiry      time.Duration
	BcryptCost     int
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "pretty"),
		ExamDir:            getEnv("EXAM_DIR", "./tests"),
		AuditLogPath:       getEnv("AUDIT_LOG_PATH", "./exam_audit.log"),
		ExamDuration:       time.Duration(getEnvInt("EXAM_DURATION_SECONDS", 300)) * time.Second,
		ViolationThreshold: getEnvInt("VIOLATION_THRESHOLD", 3),
		SweepInterval:      time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 5)) * time.Second,
		CredentialHash:     getEnv("CREDENTIAL_HASH", ""),
		JWTSecret:          getEnv("JWT_SECRET", "change-this-to-a-secure-random-string"),
		JWTExpiry:          time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 12)) * time.Hour,
		BcryptCost:         getEnvInt("BCRYPT_COST", 6),
		AllowedOrigins:     parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
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

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
