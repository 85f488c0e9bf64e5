package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// BalanceConfig holds the tuning knobs of the balancing engine. The
// two elo weights should sum to 1.0.
type BalanceConfig struct {
	Elo1v1Weight          float64
	EloTeamWeight         float64
	PositionFactorMin     float64
	PositionFactorMax     float64
	AcceptableDiffPercent float64
}

type Config struct {
	DiscordToken  string
	CommandPrefix string
	DBPath        string
	ServerPort    string
	LogLevel      string
	APIBaseURL    string
	APICacheTTL   time.Duration

	Balance BalanceConfig
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cacheTTLSec, err := getEnvInt("API_CACHE_TTL", 3600)
	if err != nil {
		return nil, err
	}

	balance := BalanceConfig{}
	if balance.Elo1v1Weight, err = getEnvFloat("ELO_1V1_WEIGHT", 0.4); err != nil {
		return nil, err
	}
	if balance.EloTeamWeight, err = getEnvFloat("ELO_TEAM_WEIGHT", 0.6); err != nil {
		return nil, err
	}
	if balance.PositionFactorMin, err = getEnvFloat("POSITION_FACTOR_MIN", 0.9); err != nil {
		return nil, err
	}
	if balance.PositionFactorMax, err = getEnvFloat("POSITION_FACTOR_MAX", 1.1); err != nil {
		return nil, err
	}
	if balance.AcceptableDiffPercent, err = getEnvFloat("ACCEPTABLE_TEAM_DIFF_PERCENT", 3.0); err != nil {
		return nil, err
	}

	cfg := &Config{
		DiscordToken:  getEnv("DISCORD_TOKEN", ""),
		CommandPrefix: getEnv("COMMAND_PREFIX", "!"),
		DBPath:        getEnv("DB_PATH", "aoe2_balancer.db"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		APIBaseURL:    getEnv("AOE2_GG_API_BASE_URL", "https://aoe2.gg/api"),
		APICacheTTL:   time.Duration(cacheTTLSec) * time.Second,
		Balance:       balance,
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if err := validateBalance(cfg.Balance); err != nil {
		return nil, err
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("api_base_url", cfg.APIBaseURL).
		Dur("api_cache_ttl", cfg.APICacheTTL).
		Float64("elo_1v1_weight", cfg.Balance.Elo1v1Weight).
		Float64("elo_team_weight", cfg.Balance.EloTeamWeight).
		Msg("configuration loaded")

	return cfg, nil
}

func validateBalance(b BalanceConfig) error {
	if sum := b.Elo1v1Weight + b.EloTeamWeight; math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("elo weights must sum to 1.0, got %.2f", sum)
	}
	if b.PositionFactorMax <= 1.0 {
		return fmt.Errorf("POSITION_FACTOR_MAX must be greater than 1.0, got %.2f", b.PositionFactorMax)
	}
	if b.PositionFactorMin >= 1.0 || b.PositionFactorMin <= 0 {
		return fmt.Errorf("POSITION_FACTOR_MIN must be in (0, 1), got %.2f", b.PositionFactorMin)
	}
	if b.AcceptableDiffPercent < 0 {
		return fmt.Errorf("ACCEPTABLE_TEAM_DIFF_PERCENT must not be negative, got %.2f", b.AcceptableDiffPercent)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return f, nil
}
