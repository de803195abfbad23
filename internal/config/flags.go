package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// RegisterServerFlags adds the host's HTTP and game flags
func (c *Config) RegisterServerFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Server.Bind, "bind", "b", c.Server.Bind, "address to bind to (env: GHOSTWRITER_BIND)")
	fs.IntVarP(&c.Server.Port, "port", "p", c.Server.Port, "port to listen on (env: GHOSTWRITER_PORT)")
	fs.StringVar(&c.Server.PublicURL, "public-url", c.Server.PublicURL, "base URL used in invite links (env: GHOSTWRITER_PUBLIC_URL)")
	fs.BoolVar(&c.Server.Profile, "profile", c.Server.Profile, "register net/http/pprof handlers (env: GHOSTWRITER_PROFILE)")

	fs.StringVar(&c.Game.HostName, "host-name", c.Game.HostName, "display name of the host (env: GHOSTWRITER_HOST_NAME)")
	fs.StringVar(&c.Game.Theme, "theme", c.Game.Theme, "starting prompt theme (env: GHOSTWRITER_THEME)")
	fs.IntVar(&c.Game.MaxRounds, "max-rounds", c.Game.MaxRounds, "rounds per game (env: GHOSTWRITER_MAX_ROUNDS)")
	fs.DurationVar(&c.Game.RoundDuration, "round-duration", c.Game.RoundDuration, "time to write an answer (env: GHOSTWRITER_ROUND_DURATION)")
	fs.StringVar(&c.Game.Password, "password", c.Game.Password, "lobby password, empty for none (env: GHOSTWRITER_PASSWORD)")
	fs.BoolVar(&c.Game.WaitingRoom, "waiting-room", c.Game.WaitingRoom, "hold joiners until the host approves them (env: GHOSTWRITER_WAITING_ROOM)")
	fs.DurationVar(&c.Game.ReadDelay, "read-delay", c.Game.ReadDelay, "time to read the prompt before writing opens (env: GHOSTWRITER_READ_DELAY)")
	fs.DurationVar(&c.Game.RevealCadence, "reveal-cadence", c.Game.RevealCadence, "time between reveal steps (env: GHOSTWRITER_REVEAL_CADENCE)")
	fs.DurationVar(&c.Game.ReconnectGrace, "reconnect-grace", c.Game.ReconnectGrace, "time a disconnected player keeps their seat (env: GHOSTWRITER_RECONNECT_GRACE)")
	fs.IntVar(&c.Game.ChatHistory, "chat-history", c.Game.ChatHistory, "chat messages kept (env: GHOSTWRITER_CHAT_HISTORY)")
	fs.IntVar(&c.Game.RoomCodeLength, "room-code-length", c.Game.RoomCodeLength, "length of generated room codes (env: GHOSTWRITER_ROOM_CODE_LENGTH)")

	fs.StringVar(&c.Ghost.Provider, "provider", c.Ghost.Provider, "ghost provider: offline, gemini, openai or anthropic (env: GHOSTWRITER_PROVIDER)")
	fs.StringVar(&c.Ghost.GeminiKey, "gemini-key", c.Ghost.GeminiKey, "Gemini API key (env: GHOSTWRITER_GEMINI_KEY)")
	fs.StringVar(&c.Ghost.GeminiModel, "gemini-model", c.Ghost.GeminiModel, "Gemini model (env: GHOSTWRITER_GEMINI_MODEL)")
	fs.StringVar(&c.Ghost.OpenAIKey, "openai-key", c.Ghost.OpenAIKey, "OpenAI API key (env: GHOSTWRITER_OPENAI_KEY)")
	fs.StringVar(&c.Ghost.OpenAIModel, "openai-model", c.Ghost.OpenAIModel, "OpenAI model (env: GHOSTWRITER_OPENAI_MODEL)")
	fs.StringVar(&c.Ghost.AnthropicKey, "anthropic-key", c.Ghost.AnthropicKey, "Anthropic API key (env: GHOSTWRITER_ANTHROPIC_KEY)")
	fs.StringVar(&c.Ghost.AnthropicModel, "anthropic-model", c.Ghost.AnthropicModel, "Anthropic model (env: GHOSTWRITER_ANTHROPIC_MODEL)")
}

// RegisterIdentityFlags adds the persistent identity flags
func (c *Config) RegisterIdentityFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Identity.Backend, "identity-backend", c.Identity.Backend, "identity store: file or redis (env: GHOSTWRITER_IDENTITY_BACKEND)")
	fs.StringVar(&c.Identity.Path, "identity-path", c.Identity.Path, "identity file for the file backend (env: GHOSTWRITER_IDENTITY_PATH)")
	fs.DurationVar(&c.Identity.TTL, "identity-ttl", c.Identity.TTL, "how long an identity stays valid (env: GHOSTWRITER_IDENTITY_TTL)")
	fs.StringVar(&c.Identity.RedisAddr, "redis-addr", c.Identity.RedisAddr, "redis address for the redis backend (env: GHOSTWRITER_REDIS_ADDR)")
	fs.StringVar(&c.Identity.RedisPassword, "redis-password", c.Identity.RedisPassword, "redis password (env: GHOSTWRITER_REDIS_PASSWORD)")
	fs.IntVar(&c.Identity.RedisDB, "redis-db", c.Identity.RedisDB, "redis database (env: GHOSTWRITER_REDIS_DB)")
	fs.StringVar(&c.Identity.Profile, "identity-profile", c.Identity.Profile, "identity profile name in redis (env: GHOSTWRITER_IDENTITY_PROFILE)")
}

// RegisterLoggingFlags adds the logging flags
func (c *Config) RegisterLoggingFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Logging.Level, "log-level", c.Logging.Level, "debug, info, warn or error (env: GHOSTWRITER_LOG_LEVEL)")
	fs.StringVar(&c.Logging.Format, "log-format", c.Logging.Format, "text or json (env: GHOSTWRITER_LOG_FORMAT)")
}

// ApplyEnv fills every flag the user did not set from its environment
// variable, so flags always win over the environment.
func ApplyEnv(fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var firstErr error
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			if err := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("%s_%s: %w", EnvPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), err)
			}
		}
	})
	return firstErr
}
