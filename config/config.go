package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	AWS       AWSConfig
	Catalog   CatalogConfig
	Images    ImagesConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AWSConfig holds S3 credentials and bucket configuration
type AWSConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	CatalogBucket   string `mapstructure:"catalog_bucket"`
	PDFBucket       string `mapstructure:"pdf_bucket"`
	ImageBucket     string `mapstructure:"image_bucket"`
	PDFPrefix       string `mapstructure:"pdf_prefix"`
	ImagePrefix     string `mapstructure:"image_prefix"`
	CatalogPrefix   string `mapstructure:"catalog_prefix"`
}

// CatalogConfig holds catalog derivation settings
type CatalogConfig struct {
	Filename        string            `mapstructure:"filename"`
	OutputDir       string            `mapstructure:"output_dir"`
	DefaultCategory string            `mapstructure:"default_category"`
	CategoryMapping map[string]string `mapstructure:"category_mapping"`
}

// ImagesConfig holds image mirroring settings
type ImagesConfig struct {
	Concurrency int     `mapstructure:"concurrency"`
	RatePerSec  float64 `mapstructure:"rate_per_sec"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/liquidationblitz/")

	// Environment variable settings
	v.SetEnvPrefix("BLITZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// CatalogKey returns the full object key of the remote catalog file
func (c *Config) CatalogKey() string {
	return c.AWS.CatalogPrefix + c.Catalog.Filename
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// AWS defaults
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.pdf_prefix", "pdfs/")
	v.SetDefault("aws.image_prefix", "images/")
	v.SetDefault("aws.catalog_prefix", "") // catalog at root of bucket

	// Catalog defaults
	v.SetDefault("catalog.filename", "liquidationblitzcatalog.csv")
	v.SetDefault("catalog.output_dir", "output")
	v.SetDefault("catalog.default_category", "Apparel & Accessories")
	v.SetDefault("catalog.category_mapping", defaultCategoryMapping())

	// Image defaults
	v.SetDefault("images.concurrency", 4)
	v.SetDefault("images.rate_per_sec", 5)

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
}

// defaultCategoryMapping maps spreadsheet category labels to Google product
// category taxonomy strings
func defaultCategoryMapping() map[string]string {
	return map[string]string{
		"MENS SUITS & COATS": "Apparel & Accessories > Clothing > Suits",
		"WOMENS DRESSES":     "Apparel & Accessories > Clothing > Dresses",
		"MENS SHIRTS":        "Apparel & Accessories > Clothing > Shirts & Tops",
		"WOMENS SHOES":       "Apparel & Accessories > Shoes",
		"MENS SHOES":         "Apparel & Accessories > Shoes",
		"JEWELRY":            "Apparel & Accessories > Jewelry",
		"HANDBAGS":           "Apparel & Accessories > Handbags, Wallets & Cases",
	}
}

// validate validates the configuration
func validate(config *Config) error {
	if config.AWS.CatalogBucket == "" {
		return fmt.Errorf("catalog bucket is required (set BLITZ_AWS_CATALOG_BUCKET)")
	}
	if config.AWS.PDFBucket == "" {
		return fmt.Errorf("PDF bucket is required (set BLITZ_AWS_PDF_BUCKET)")
	}
	if config.AWS.ImageBucket == "" {
		return fmt.Errorf("image bucket is required (set BLITZ_AWS_IMAGE_BUCKET)")
	}
	if config.Catalog.Filename == "" {
		return fmt.Errorf("catalog filename must not be empty")
	}
	if config.Catalog.DefaultCategory == "" {
		return fmt.Errorf("default Google product category must not be empty")
	}
	return nil
}
