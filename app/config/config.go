package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Logs     LogConfig
	DB       PostgresConfig
	Engine   EngineConfig
	Auth     AuthConfig
	QueueURL string
	HTTPAddr string
	Workers  int
}

type LogConfig struct {
	Style string // "console" or "json"
	Level string
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
	Database string
}

// Enabled reports whether enough is set to open a connection.
func (p PostgresConfig) Enabled() bool {
	return p.URL != ""
}

// DSN builds the lib/pq connection string.
func (p PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s", p.Username, p.Password, p.URL, p.Port)
	if p.Database != "" {
		dsn += "/" + p.Database
	}
	return dsn
}

type EngineConfig struct {
	Depth    int // plies searched per position
	MaxDepth int // upper bound accepted from HTTP callers
	NumMoves int // how many plies of each game get analysed
	NumGames int // games per batch / queue message
}

type AuthConfig struct {
	Issuer   string
	Audience string
	Disabled bool
}

const (
	defaultDepth    = 3
	defaultMaxDepth = 5
	defaultNumMoves = 60
	defaultNumGames = 25
	defaultHTTPAddr = "0.0.0.0:8080"
)

func LoadConfig() (*Config, error) {
	depth, err := intEnv("ENGINE_DEPTH", defaultDepth)
	if err != nil {
		return nil, err
	}
	maxDepth, err := intEnv("ENGINE_MAX_DEPTH", defaultMaxDepth)
	if err != nil {
		return nil, err
	}
	numMoves, err := intEnv("ENGINE_NUMBER_OF_MOVES", defaultNumMoves)
	if err != nil {
		return nil, err
	}
	numGames, err := intEnv("ENGINE_NUMBER_OF_GAMES", defaultNumGames)
	if err != nil {
		return nil, err
	}
	workers, err := intEnv("WORKERS", runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	authDisabled := false
	if v := os.Getenv("AUTH_DISABLED"); v != "" {
		authDisabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parsing AUTH_DISABLED: %w", err)
		}
	}

	cfg := &Config{
		QueueURL: os.Getenv("QUEUE_URL"),
		HTTPAddr: stringEnv("HTTP_ADDR", defaultHTTPAddr),
		Workers:  workers,
		Logs: LogConfig{
			Style: stringEnv("LOG_STYLE", "console"),
			Level: stringEnv("LOG_LEVEL", "info"),
		},
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     stringEnv("POSTGRES_PORT", "5432"),
			Database: os.Getenv("POSTGRES_DB"),
		},
		Engine: EngineConfig{
			Depth:    depth,
			MaxDepth: maxDepth,
			NumMoves: numMoves,
			NumGames: numGames,
		},
		Auth: AuthConfig{
			Issuer:   os.Getenv("AUTH0_ISSUER"),
			Audience: os.Getenv("AUTH0_AUDIENCE"),
			Disabled: authDisabled,
		},
	}

	if cfg.Engine.MaxDepth < cfg.Engine.Depth {
		cfg.Engine.MaxDepth = cfg.Engine.Depth
	}

	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("converting %s to int: %w", key, err)
	}
	return n, nil
}
