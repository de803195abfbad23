package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable the CLI reads
const EnvPrefix = "GHOSTWRITER"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Game     GameConfig
	Identity IdentityConfig
	Ghost    GhostConfig
	Logging  LoggingConfig
}

// ServerConfig holds the host's HTTP settings
type ServerConfig struct {
	Bind      string
	Port      int
	PublicURL string // base of the invite link; derived from the request when empty
	Profile   bool   // register pprof handlers
}

// GameConfig holds lobby defaults chosen when the host starts
type GameConfig struct {
	HostName       string
	Theme          string
	MaxRounds      int
	RoundDuration  time.Duration
	Password       string
	WaitingRoom    bool
	ReadDelay      time.Duration
	RevealCadence  time.Duration
	ReconnectGrace time.Duration
	ChatHistory    int
	RoomCodeLength int
}

// IdentityConfig selects where the persistent player id lives
type IdentityConfig struct {
	Backend       string // "file" or "redis"
	Path          string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Profile       string
}

// GhostConfig holds content-generation providers and their keys
type GhostConfig struct {
	Provider       string
	GeminiKey      string
	GeminiModel    string
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Identity backends
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Identity locations. The host keeps its own so a player started from the
// same directory never shares the host's persistent id.
const (
	DefaultIdentityPath     = "ghostwriter-identity.json"
	DefaultHostIdentityPath = "ghostwriter-host-identity.json"
	DefaultIdentityProfile  = "default"
	HostIdentityProfile     = "host"
)

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Game: GameConfig{
			HostName:       "Host",
			Theme:          "classic",
			MaxRounds:      5,
			RoundDuration:  45 * time.Second,
			ReadDelay:      5 * time.Second,
			RevealCadence:  2 * time.Second,
			ReconnectGrace: 60 * time.Second,
			ChatHistory:    50,
			RoomCodeLength: 6,
		},
		Identity: IdentityConfig{
			Backend:   BackendFile,
			Path:      DefaultIdentityPath,
			TTL:       24 * time.Hour,
			RedisAddr: "localhost:6379",
			Profile:   DefaultIdentityProfile,
		},
		Ghost: GhostConfig{
			Provider: "offline",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultHost is Default with the host's identity location
func DefaultHost() *Config {
	c := Default()
	c.Identity.Path = DefaultHostIdentityPath
	c.Identity.Profile = HostIdentityProfile
	return c
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Server.Port)
	}
	if c.Game.MaxRounds < 1 {
		return fmt.Errorf("invalid max rounds: %d", c.Game.MaxRounds)
	}
	if c.Game.RoundDuration < time.Second {
		return fmt.Errorf("round duration must be at least 1s: %s", c.Game.RoundDuration)
	}
	for name, d := range map[string]time.Duration{
		"read delay":      c.Game.ReadDelay,
		"reveal cadence":  c.Game.RevealCadence,
		"reconnect grace": c.Game.ReconnectGrace,
		"identity ttl":    c.Identity.TTL,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive: %s", name, d)
		}
	}
	if c.Game.ChatHistory < 1 {
		return fmt.Errorf("invalid chat history: %d", c.Game.ChatHistory)
	}
	if c.Game.RoomCodeLength < 4 {
		return fmt.Errorf("room codes need at least 4 characters: %d", c.Game.RoomCodeLength)
	}
	switch c.Identity.Backend {
	case BackendFile:
		if c.Identity.Path == "" {
			return errors.New("identity path is required for the file backend")
		}
	case BackendRedis:
		if c.Identity.RedisAddr == "" {
			return errors.New("redis address is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown identity backend: %q", c.Identity.Backend)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %q", c.Logging.Format)
	}
	return nil
}

// Addr returns the server address in host:port format
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Bind, strconv.Itoa(c.Server.Port))
}

// APIKeys maps provider names to their configured keys
func (c *Config) APIKeys() map[string]string {
	return map[string]string{
		"gemini":    c.Ghost.GeminiKey,
		"openai":    c.Ghost.OpenAIKey,
		"anthropic": c.Ghost.AnthropicKey,
	}
}

// NewLogger builds the process logger
func NewLogger(cfg LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLogLevel(cfg.Level),
	}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLogLevel maps a level name to a slog level, defaulting to info
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
