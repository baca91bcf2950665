package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ApiURL     string
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string

	DestinationRoot    string
	GsutilPath         string
	MaxParallel        int
	ThreadsPerTransfer int
	PollInterval       time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using environment variables only")
	}

	config := &Config{
		ApiURL:     getEnv("API_URL", ""),
		AccessKey:  getEnv("ACCESS_KEY", ""),
		SecretKey:  getEnv("SECRET_KEY", ""),
		BucketName: getEnv("BUCKET_NAME", ""),
		Region:     getEnv("REGION", ""),

		DestinationRoot:    getEnv("DESTINATION_ROOT", getEnv("DEFAULT_DESTINATION", "")),
		GsutilPath:         getEnv("GSUTIL_PATH", "gsutil"),
		MaxParallel:        getEnvInt("MAX_PARALLEL", 16),
		ThreadsPerTransfer: getEnvInt("THREADS_PER_TRANSFER", 8),
		PollInterval:       time.Duration(getEnvInt("POLL_INTERVAL_MS", 500)) * time.Millisecond,
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.MaxParallel < 1 {
		return fmt.Errorf("MAX_PARALLEL must be at least 1, got %d", c.MaxParallel)
	}
	if c.ThreadsPerTransfer < 1 {
		return fmt.Errorf("THREADS_PER_TRANSFER must be at least 1, got %d", c.ThreadsPerTransfer)
	}
	if c.PollInterval < 50*time.Millisecond {
		return fmt.Errorf("POLL_INTERVAL_MS must be at least 50, got %s", c.PollInterval)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("not a number, using default")
		return defaultValue
	}
	return parsed
}
