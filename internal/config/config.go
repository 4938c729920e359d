package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ConsoleURL         string
	PollInterval       time.Duration
	CommandPrefix      string
	BotName            string
	OwnerName          string
	DatabaseURL        string
	DiscordToken       string
	DiscordGuildID     string
	RelayChannel       string
	BridgeAlias        string
	EloAPIURL          string
	EloCacheTTL        time.Duration
	GameMode           string
	EloMin             int
	EloMax             int
	Greeting           string
	RejectUnauthorized bool
	MetricsAddr        string
	WriteSettleDelay   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	consoleURL := readSecret("console_url")
	if consoleURL == "" {
		consoleURL = os.Getenv("CONSOLE_URL")
	}
	if consoleURL == "" {
		return nil, fmt.Errorf("CONSOLE_URL is not set (via secret or env var)")
	}

	dbURL := readSecret("database_url")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set (via secret or env var)")
	}

	token := readSecret("discord_token")
	if token == "" {
		token = os.Getenv("DISCORD_TOKEN")
	}

	cfg := &Config{
		ConsoleURL:         consoleURL,
		PollInterval:       envDuration("CONSOLE_POLL_INTERVAL", 500*time.Millisecond),
		CommandPrefix:      envString("COMMAND_PREFIX", "!"),
		BotName:            envString("BOT_NAME", "warden"),
		OwnerName:          envString("OWNER_NAME", ""),
		DatabaseURL:        dbURL,
		DiscordToken:       token,
		DiscordGuildID:     envString("DISCORD_GUILD_ID", ""),
		RelayChannel:       envString("DISCORD_RELAY_CHANNEL", "server-console"),
		BridgeAlias:        envString("BRIDGE_ALIAS", "warden"),
		EloAPIURL:          envString("ELO_API_URL", "https://api.qlranks.example/players"),
		EloCacheTTL:        envDuration("ELO_CACHE_TTL", 24*time.Hour),
		GameMode:           envString("GAME_MODE", "ca"),
		EloMin:             envInt("ELO_MIN", 0),
		EloMax:             envInt("ELO_MAX", 0),
		Greeting:           envString("GREETING", ""),
		RejectUnauthorized: envBool("REJECT_UNAUTHORIZED", false),
		MetricsAddr:        envString("METRICS_ADDR", ":2112"),
		WriteSettleDelay:   envDuration("WRITE_SETTLE_DELAY", 600*time.Millisecond),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var secretsDir = "/run/secrets/"

func readSecret(name string) string {
	data, err := os.ReadFile(secretsDir + name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
