package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	LLM      LLMConfig
	Drive    DriveConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// LLMConfig holds model-related configuration
type LLMConfig struct {
	Model       string
	ProjectID   string
	Region      string
	Temperature float32
	MaxTokens   int32
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
	RatePerSec  float64
	RateBurst   int
}

// DriveConfig holds Google Drive collaborator configuration
type DriveConfig struct {
	CredentialsPath string
	InputFolderID   string
	OutputFolderID  string
}

// PipelineConfig holds batch processing configuration
type PipelineConfig struct {
	Workers       int
	MaxFileSizeMB int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8000"),
		},
		LLM: LLMConfig{
			Model:       getEnv("LLM_MODEL", "gemini-1.5-pro"),
			ProjectID:   getEnv("GCP_PROJECT_ID", ""),
			Region:      getEnv("GCP_REGION", "us-central1"),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.1),
			MaxTokens:   getEnvAsInt32("LLM_MAX_TOKENS", 4000),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
			MaxAttempts: getEnvAsInt("LLM_MAX_RETRIES", 3),
			Backoff:     getEnvAsDuration("LLM_RETRY_DELAY", time.Second),
			RatePerSec:  getEnvAsFloat64("LLM_RATE_PER_SEC", 1),
			RateBurst:   getEnvAsInt("LLM_RATE_BURST", 2),
		},
		Drive: DriveConfig{
			CredentialsPath: getEnv("GOOGLE_DRIVE_CREDENTIALS_PATH", ""),
			InputFolderID:   getEnv("GOOGLE_DRIVE_INPUT_FOLDER_ID", ""),
			OutputFolderID:  getEnv("GOOGLE_DRIVE_OUTPUT_FOLDER_ID", ""),
		},
		Pipeline: PipelineConfig{
			Workers:       getEnvAsInt("PIPELINE_WORKERS", 4),
			MaxFileSizeMB: getEnvAsInt("MAX_FILE_SIZE_MB", 50),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.ProjectID == "" {
		return NewAppError("CONFIG_ERROR", "GCP_PROJECT_ID is required", ErrValidation)
	}
	if c.Drive.CredentialsPath == "" {
		return NewAppError("CONFIG_ERROR", "GOOGLE_DRIVE_CREDENTIALS_PATH is required", ErrValidation)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrValidation)
	}
	return nil
}
