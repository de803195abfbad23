package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestHostIdentityIsSeparate(t *testing.T) {
	host, player := DefaultHost(), Default()
	if err := host.Validate(); err != nil {
		t.Fatalf("default host config invalid: %v", err)
	}
	if host.Identity.Path == player.Identity.Path {
		t.Fatalf("host and player share identity file %q", host.Identity.Path)
	}
	if host.Identity.Profile == player.Identity.Profile {
		t.Fatalf("host and player share redis profile %q", host.Identity.Profile)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "invalid port"},
		{"rounds", func(c *Config) { c.Game.MaxRounds = 0 }, "max rounds"},
		{"round duration", func(c *Config) { c.Game.RoundDuration = 500 * time.Millisecond }, "round duration"},
		{"grace", func(c *Config) { c.Game.ReconnectGrace = 0 }, "reconnect grace"},
		{"chat", func(c *Config) { c.Game.ChatHistory = 0 }, "chat history"},
		{"room code", func(c *Config) { c.Game.RoomCodeLength = 2 }, "room codes"},
		{"backend", func(c *Config) { c.Identity.Backend = "sqlite" }, "identity backend"},
		{"redis addr", func(c *Config) {
			c.Identity.Backend = BackendRedis
			c.Identity.RedisAddr = ""
		}, "redis address"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestApplyEnvFillsUnsetFlags(t *testing.T) {
	t.Setenv("GHOSTWRITER_PORT", "9191")
	t.Setenv("GHOSTWRITER_ROUND_DURATION", "90s")
	t.Setenv("GHOSTWRITER_WAITING_ROOM", "true")
	t.Setenv("GHOSTWRITER_HOST_NAME", "FromEnv")

	cfg := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterServerFlags(fs)
	if err := fs.Parse([]string{"--host-name", "FromFlag"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := ApplyEnv(fs); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Fatalf("expected port from env, got %d", cfg.Server.Port)
	}
	if cfg.Game.RoundDuration != 90*time.Second {
		t.Fatalf("expected 90s, got %s", cfg.Game.RoundDuration)
	}
	if !cfg.Game.WaitingRoom {
		t.Fatal("expected waiting room from env")
	}
	if cfg.Game.HostName != "FromFlag" {
		t.Fatalf("flag should beat env, got %q", cfg.Game.HostName)
	}
}

func TestApplyEnvReportsBadValues(t *testing.T) {
	t.Setenv("GHOSTWRITER_MAX_ROUNDS", "lots")

	cfg := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterServerFlags(fs)
	_ = fs.Parse(nil)

	err := ApplyEnv(fs)
	if err == nil || !strings.Contains(err.Error(), "GHOSTWRITER_MAX_ROUNDS") {
		t.Fatalf("expected an error naming the variable, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GHOSTWRITER_TEST_DOTENV=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GHOSTWRITER_TEST_DOTENV", "")
	os.Unsetenv("GHOSTWRITER_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("GHOSTWRITER_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("expected value from .env, got %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatal("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("expected json output, got %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	if ParseLogLevel("DEBUG") != slog.LevelDebug {
		t.Fatal("expected debug")
	}
	if ParseLogLevel("nonsense") != slog.LevelInfo {
		t.Fatal("expected info fallback")
	}
}
