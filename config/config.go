package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all application configuration loaded from environment
// variables, with a .env file as an optional source.
type Config struct {
	// Browser / navigation
	NavigationTimeout time.Duration `env:"NAVIGATION_TIMEOUT" envDefault:"30s"`
	SettleDelay       time.Duration `env:"SETTLE_DELAY" envDefault:"2s"`
	MinPreNavDelay    time.Duration `env:"MIN_PRENAV_DELAY" envDefault:"500ms"`
	MaxPreNavDelay    time.Duration `env:"MAX_PRENAV_DELAY" envDefault:"1500ms"`
	Headless          bool          `env:"HEADLESS" envDefault:"true"`
	ChromeBin         string        `env:"CHROME_BIN"`

	// Cache
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	RedisAddr string        `env:"REDIS_ADDR"` // empty = in-memory cache
	RedisPass string        `env:"REDIS_PASSWORD"`
	RedisDB   int           `env:"REDIS_DB" envDefault:"0"`

	// Scoring
	AIBaseURL string        `env:"AI_BASE_URL"` // empty = heuristic only
	AIAPIKey  string        `env:"AI_API_KEY"`
	AIModel   string        `env:"AI_MODEL"`
	AITimeout time.Duration `env:"AI_TIMEOUT" envDefault:"20s"`

	// Batch runner
	MaxConcurrency int    `env:"MAX_CONCURRENCY" envDefault:"3"`
	CSVOutputPath  string `env:"CSV_OUTPUT_PATH" envDefault:"./output/analyses.csv"`

	// Persistence (optional)
	PersistAnalyses  bool   `env:"PERSIST_ANALYSES" envDefault:"false"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"analyzer"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"analyzer123"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"property_db"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

// Load reads the .env file (when present) and parses the environment into a
// Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using system env vars")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}
