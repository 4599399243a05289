package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	VotingAPIURL string
	AccessToken  string
	DatabaseURL  string
	DatabaseType string
	HTTPTimeout  time.Duration
}

const (
	DefaultPort        = 3318
	DefaultDatabaseURL = "file:tablo-voting.db"
	DefaultHTTPTimeout = 15 * time.Second
)

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	flags := flag.NewFlagSet("tablo-voting", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", 0, "Session API port")
	flags.StringVar(&cfg.VotingAPIURL, "api", "", "Voting API base URL")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	flags.DurationVar(&cfg.HTTPTimeout, "timeout", 0, "Voting API request timeout")
	flags.StringVar(&envFile, "env", ".env", "Optional dotenv file")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.AccessToken, "token", "", "Access token (prefer env)")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := LoadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.VotingAPIURL == "" {
		cfg.VotingAPIURL = os.Getenv("VOTING_API_URL")
	}
	if cfg.VotingAPIURL == "" {
		return Config{}, errors.New("voting API URL required (use -api or VOTING_API_URL env)")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = DefaultDatabaseURL
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}

	if cfg.HTTPTimeout == 0 {
		if s := os.Getenv("HTTP_TIMEOUT"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid HTTP_TIMEOUT env variable")
			}
			cfg.HTTPTimeout = d
		} else {
			cfg.HTTPTimeout = DefaultHTTPTimeout
		}
	}

	// Secrets - MUST be provided
	if cfg.AccessToken == "" {
		cfg.AccessToken = os.Getenv("ACCESS_TOKEN")
	}
	if cfg.AccessToken == "" {
		return Config{}, errors.New("ACCESS_TOKEN required")
	}

	return cfg, nil
}

// LoadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
