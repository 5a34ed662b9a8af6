package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string
	DBURL             string
	MigrationsDir     string
	CORSOrigins       []string
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int

	DatasetURL         string
	DatasetTimeoutSecs int
	IngestPageSize     int
	IngestWorkers      int

	// LadderMinRecommendations is the popularity threshold a game must reach
	// before it is admitted to the comparison ladder at ingest time.
	LadderMinRecommendations int

	// RankingsRateLimit caps judgment traffic per client IP per minute.
	RankingsRateLimit int
}

const defaultDatasetURL = "https://datasets-server.huggingface.co/rows?dataset=FronkonGames%2Fsteam-games-dataset&config=default&split=train"

// Load reads configuration from environment variables, applying defaults and
// validation. A .env file in the working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		DBURL:              os.Getenv("DB_URL"),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "db/migrations"),
		CORSOrigins:        getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		ReadTimeoutSecs:    getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:   getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:    getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:         getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:      getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:      getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs:  getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:   getEnvInt("DB_STATEMENT_CACHE", 512),
		DatasetURL:         getEnv("DATASET_URL", defaultDatasetURL),
		DatasetTimeoutSecs: getEnvInt("DATASET_TIMEOUT_SECS", 30),
		IngestPageSize:     getEnvInt("INGEST_PAGE_SIZE", 100),
		IngestWorkers:      getEnvInt("INGEST_WORKERS", 4),

		LadderMinRecommendations: getEnvInt("LADDER_MIN_RECOMMENDATIONS", 1000),
		RankingsRateLimit:        getEnvInt("RANKINGS_RATE_LIMIT", 60),
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.DatasetURL == "" {
		return Config{}, fmt.Errorf("DATASET_URL cannot be empty")
	}
	if cfg.DatasetTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("DATASET_TIMEOUT_SECS must be positive")
	}
	if cfg.IngestPageSize < 1 || cfg.IngestPageSize > 100 {
		return Config{}, fmt.Errorf("INGEST_PAGE_SIZE must be between 1 and 100")
	}
	if cfg.IngestWorkers <= 0 {
		return Config{}, fmt.Errorf("INGEST_WORKERS must be positive")
	}
	if cfg.LadderMinRecommendations < 0 {
		return Config{}, fmt.Errorf("LADDER_MIN_RECOMMENDATIONS must be non-negative")
	}
	if cfg.RankingsRateLimit <= 0 {
		return Config{}, fmt.Errorf("RANKINGS_RATE_LIMIT must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE must be non-negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
