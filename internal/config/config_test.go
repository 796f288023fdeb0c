package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `
port: "8080"
logLevel: info
databaseURL: postgres://localhost/atrangi
redisAddr: localhost:6379
jwtSecret: test-secret
adminEmail: admin@atrangi.com
signupRateLimitPerMinute: 5
loginRateLimitPerMinute: 10
`

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, validYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.JWTSecret != "test-secret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.AdminEmail != "admin@atrangi.com" || cfg.SignupRateLimitPerMinute != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, validYAML)
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("TRUSTED_PROXY_CIDRS", "10.0.0.0/8, 192.168.0.0/16")
	t.Setenv("TWO_PHASE_STOCK", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.JWTSecret != "env-secret" {
		t.Fatalf("env overrides must win: %+v", cfg)
	}
	if len(cfg.TrustedProxyCIDRs) != 2 || cfg.TrustedProxyCIDRs[1] != "192.168.0.0/16" {
		t.Fatalf("unexpected proxy cidrs: %+v", cfg.TrustedProxyCIDRs)
	}
	if !cfg.TwoPhaseStock {
		t.Fatalf("TWO_PHASE_STOCK must apply")
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing port", "databaseURL: x\nredisAddr: y\njwtSecret: z\n"},
		{"missing database", "port: \"8080\"\nredisAddr: y\njwtSecret: z\n"},
		{"missing jwt secret", "port: \"8080\"\ndatabaseURL: x\nredisAddr: y\n"},
		{"missing redis", "port: \"8080\"\ndatabaseURL: x\njwtSecret: z\n"},
		{"negative rate limit", "port: \"8080\"\ndatabaseURL: x\nredisAddr: y\njwtSecret: z\nsignupRateLimitPerMinute: -1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.yaml)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseSessionTTL(t *testing.T) {
	if d, err := ParseSessionTTL(""); err != nil || d != 0 {
		t.Fatalf("empty TTL: d=%v err=%v", d, err)
	}
	if d, err := ParseSessionTTL("0"); err != nil || d != 0 {
		t.Fatalf("zero TTL: d=%v err=%v", d, err)
	}
	if d, err := ParseSessionTTL("24h"); err != nil || d != 24*time.Hour {
		t.Fatalf("24h TTL: d=%v err=%v", d, err)
	}
	if _, err := ParseSessionTTL("not-a-duration"); err == nil {
		t.Fatalf("expected parse error")
	}
}
