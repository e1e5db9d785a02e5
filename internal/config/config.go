package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the dashboard service.
type Config struct {
	Port            string
	Environment     string
	LogLevel        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DatasetPath         string
	DatasetURL          string
	DatasetFetchTimeout time.Duration

	StoreDriver string
	StoreDSN    string

	Regions        []string
	MaxUploadBytes int64
}

// Load reads the given .env files (".env" when none) without overriding
// variables already set, then builds the config.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// a missing file is fine; the environment may carry everything
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

// FromEnv builds the config from environment variables with defaults.
func FromEnv() Config {
	return Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("ENVIRONMENT", "local"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		ReadTimeout:         time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SEC", 15)) * time.Second,
		WriteTimeout:        time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SEC", 60)) * time.Second,
		IdleTimeout:         time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SEC", 120)) * time.Second,
		ShutdownTimeout:     time.Duration(getEnvInt("HTTP_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		DatasetPath:         getEnv("DATASET_PATH", "DB.xlsx"),
		DatasetURL:          getEnv("DATASET_URL", ""),
		DatasetFetchTimeout: time.Duration(getEnvInt("DATASET_FETCH_TIMEOUT_SEC", 12)) * time.Second,
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
		StoreDSN:            getEnv("STORE_DSN", "rms-dashboard.db"),
		Regions:             getEnvList("REGIONS", []string{"Jacob Abad", "Larkana", "Sukkur"}),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_MB", 16)) << 20,
	}
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getEnvList(key string, def []string) []string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return append([]string(nil), def...)
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}
