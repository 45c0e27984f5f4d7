package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the full application configuration
type Config struct {
	Port             string
	JWTSecret        string
	DatabaseURL      string
	DatabaseConfig   DatabaseConfig
	CloudinaryConfig CloudinaryConfig
	EsewaConfig      EsewaConfig
	FrontendURL      string
	AppEnv           string
}

// DatabaseConfig holds the database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// CloudinaryConfig holds the settings for Cloudinary uploads
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
}

// EsewaConfig holds the settings for the eSewa payment gateway
type EsewaConfig struct {
	MerchantID string
	SecretKey  string
	SuccessURL string
	FailureURL string
	APIURL     string
}

// LoadConfig loads configuration from .env / environment variables
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "shelfswap_user"),
		Password: getEnv("PGPASSWORD", "shelfswap_pass"),
		Name:     getEnv("PGDATABASE", "shelfswap"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
	}

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)

	cloudinaryConfig := CloudinaryConfig{
		CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "bookstore"),
	}

	esewaConfig := EsewaConfig{
		MerchantID: getEnv("ESEWA_MERCHANT_ID", ""),
		SecretKey:  getEnv("ESEWA_SECRET_KEY", ""),
		SuccessURL: getEnv("ESEWA_SUCCESS_URL", ""),
		FailureURL: getEnv("ESEWA_FAILURE_URL", ""),
		APIURL:     getEnv("ESEWA_API_URL", "https://rc-epay.esewa.com.np/api/epay/main/v2/form"),
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		DatabaseURL:      dbURL,
		DatabaseConfig:   dbConfig,
		CloudinaryConfig: cloudinaryConfig,
		EsewaConfig:      esewaConfig,
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		AppEnv:           getEnv("APP_ENV", "production"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return cfg
}

// getEnv returns an environment variable or the given default
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
