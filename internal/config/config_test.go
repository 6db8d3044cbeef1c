package config

import (
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so assertions about defaults
// hold regardless of the ambient process environment. Empty values fall
// through to the fallbacks.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "GIN_MODE", "LOG_LEVEL", "LOG_FORMAT",
		"EXAM_DIR", "AUDIT_LOG_PATH",
		"EXAM_DURATION_SECONDS", "VIOLATION_THRESHOLD", "SWEEP_INTERVAL_SECONDS",
		"CREDENTIAL_HASH", "JWT_SECRET", "JWT_EXPIRY_HOURS", "BCRYPT_COST",
		"ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.ExamDuration != 300*time.Second {
		t.Errorf("ExamDuration = %s, want 5m", cfg.ExamDuration)
	}
	if cfg.ViolationThreshold != 3 {
		t.Errorf("ViolationThreshold = %d, want 3", cfg.ViolationThreshold)
	}
	if cfg.SweepInterval != 5*time.Second {
		t.Errorf("SweepInterval = %s, want 5s", cfg.SweepInterval)
	}
	if cfg.AllowedOrigins != nil {
		t.Errorf("AllowedOrigins = %v, want nil (allow all)", cfg.AllowedOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXAM_DURATION_SECONDS", "600")
	t.Setenv("VIOLATION_THRESHOLD", "0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.ExamDuration != 10*time.Minute {
		t.Errorf("ExamDuration = %s, want 10m", cfg.ExamDuration)
	}
	if cfg.ViolationThreshold != 0 {
		t.Errorf("ViolationThreshold = %d, want 0 (disabled)", cfg.ViolationThreshold)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != want[0] || cfg.AllowedOrigins[1] != want[1] {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestGetEnvIntRejectsGarbage(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXAM_DURATION_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.ExamDuration != 300*time.Second {
		t.Errorf("ExamDuration = %s, want fallback 5m", cfg.ExamDuration)
	}
}
