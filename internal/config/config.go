package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	JWT      JWTConfig
	Clerk    ClerkConfig
	Storage  StorageConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type GeminiConfig struct {
	APIKey string
}

type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

type ClerkConfig struct {
	SecretKey     string
	WebhookSecret string
	APIBase       string
}

type StorageConfig struct {
	TempDir     string
	MaxFileSize int64
	MinFileSize int64
}

type LoggerConfig struct {
	Level string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment variables.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "cv_checker"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			TokenExpiry: time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		},
		Clerk: ClerkConfig{
			SecretKey:     getEnv("CLERK_SECRET_KEY", ""),
			WebhookSecret: getEnv("CLERK_WEBHOOK_SECRET", ""),
			APIBase:       getEnv("CLERK_API_BASE", "https://api.clerk.com/v1"),
		},
		Storage: StorageConfig{
			TempDir:     getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10*1024*1024),
			MinFileSize: getEnvAsInt64("MIN_FILE_SIZE", 100),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}
