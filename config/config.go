package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/yourusername/billing-backoffice/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	JWTRefreshSecret string
	DefaultTaxRate   float64
	DefaultCurrency  string
	LogLevel         string
	LogFormat        string
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	taxRate, err := parseFloatOrDefault("DEFAULT_TAX_RATE", 0.13)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TAX_RATE: %w", err)
	}

	return &Config{
		Port:             os.Getenv("PORT"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		DefaultTaxRate:   taxRate,
		DefaultCurrency:  getEnvOrDefault("DEFAULT_CURRENCY", "USD"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        getEnvOrDefault("LOG_FORMAT", "console"),
	}, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	// TranslateError folds driver-specific unique violations into
	// gorm.ErrDuplicatedKey so the duplicate checks work on any store.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Supplier{},
		&models.Product{},
		&models.ProductPrice{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.InvoiceNote{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseFloat(value, 64)
}
