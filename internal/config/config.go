package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// NATS Configuration
	NatsURL        string
	ClientID       string
	RequestTimeout time.Duration
	HealthTimeout  time.Duration

	// Dispatch Configuration
	MaxWorkers int
	WindowSize int

	// Model Configuration
	ModelName    string
	ModelVersion string

	// Database Configuration
	DBPath string
}

func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := loadDotEnv(envFile); err != nil {
			slog.Warn("Could not load env file", "file", envFile, "error", err)
		} else {
			slog.Info("Environment loaded", "file", envFile)
		}
	}

	cfg := &Config{
		NatsURL:        getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		ClientID:       getEnv("CLIENT_ID", "batch-predictor"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", "30s"),
		HealthTimeout:  getEnvDuration("HEALTH_TIMEOUT", "2s"),
		MaxWorkers:     getEnvInt("MAX_WORKERS", 10),
		WindowSize:     getEnvInt("WINDOW_SIZE", 100),
		ModelName:      getEnv("MODEL_NAME", "default"),
		ModelVersion:   getEnv("MODEL_VERSION", ""),
		DBPath:         getEnv("DB_PATH", "data/predictor.sqlite"),
	}

	if cfg.MaxWorkers < 1 {
		return nil, fmt.Errorf("MAX_WORKERS must be positive, got %d", cfg.MaxWorkers)
	}
	if cfg.WindowSize < 1 {
		return nil, fmt.Errorf("WINDOW_SIZE must be positive, got %d", cfg.WindowSize)
	}

	return cfg, nil
}

func loadDotEnv(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key, defaultVal string) time.Duration {
	val := getEnv(key, defaultVal)
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	d, _ := time.ParseDuration(defaultVal)
	return d
}
