// Package common provides configuration management and HTTP endpoint
// utilities for the BaSyx AASX ingestion component. It includes support
// for YAML configuration files, environment variable overrides, CORS setup,
// health endpoints, and content-type guessing for archive entries.
// nolint:all
package common

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

// PrintSplash displays the BaSyx AASX ingest ASCII art logo to the console.
// This function is typically called during application startup to provide
// visual branding and confirm the service is starting.
func PrintSplash() {
	log.Printf(`
	██████╗  █████╗ ███████╗██╗   ██╗██╗  ██╗     ██████╗  ██████╗
	██╔══██╗██╔══██╗██╔════╝╚██╗ ██╔╝╚██╗██╔╝    ██╔════╝ ██╔═══██╗
	██████╔╝███████║███████╗ ╚████╔╝  ╚███╔╝     ██║  ███╗██║   ██║
	██╔══██╗██╔══██║╚════██║  ╚██╔╝   ██╔██╗     ██║   ██║██║   ██║
	██████╔╝██║  ██║███████║   ██║   ██╔╝ ██╗    ╚██████╔╝╚██████╔╝
	╚═════╝ ╚═╝  ╚═╝╚══════╝   ╚═╝   ╚═╝  ╚═╝     ╚═════╝  ╚═════╝

	 █████╗  █████╗ ███████╗██╗  ██╗
	██╔══██╗██╔══██╗██╔════╝╚██╗██╔╝
	███████║███████║███████╗ ╚███╔╝
	██╔══██║██╔══██║╚════██║ ██╔██╗
	██║  ██║██║  ██║███████║██╔╝ ██╗
	╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝
	`)
}

// Config represents the complete configuration structure for the AASX
// ingestion service. It combines server settings, parser behaviour, the
// optional ingest journal database, the optional S3 supplementary-file
// store, and CORS policy.
type Config struct {
	Server     ServerConfig   `yaml:"server"`   // HTTP server configuration
	Parser     ParserConfig   `yaml:"parser"`   // Parse pipeline behaviour
	Postgres   PostgresConfig `yaml:"postgres"` // Ingest journal database settings
	S3         S3Config       `yaml:"s3"`       // Supplementary blob store settings
	CorsConfig CorsConfig     `yaml:"cors" mapstructure:"cors"` // CORS policy configuration
}

// ServerConfig contains HTTP server configuration parameters.
type ServerConfig struct {
	Port        int    `yaml:"port"`        // HTTP server port (default: 5010)
	ContextPath string `yaml:"contextPath"` // Base path for all endpoints
	Workers     int    `yaml:"workers"`     // Number of parse workers
}

// ParserConfig controls the validation behaviour of the parse pipeline.
type ParserConfig struct {
	Strict               bool `yaml:"strict"`               // Run semantic verification after deserialization
	MaxVerificationCount int  `yaml:"maxVerificationCount"` // Verification error ceiling (default: 100)
	MaxElementDepth      int  `yaml:"maxElementDepth"`      // Nesting ceiling for submodel element trees
}

// PostgresConfig contains the ingest journal database connection parameters.
// The journal is disabled when Host is empty.
type PostgresConfig struct {
	Host               string `yaml:"host"`               // Database host address
	Port               int    `yaml:"port"`               // Database port (default: 5432)
	User               string `yaml:"user"`               // Database username
	Password           string `yaml:"password"`           // Database password
	DBName             string `yaml:"dbname"`             // Database name
	MaxOpenConnections int    `yaml:"maxOpenConnections"` // Maximum open connections
	MaxIdleConnections int    `yaml:"maxIdleConnections"` // Maximum idle connections
}

// S3Config contains the supplementary-file blob store settings.
// The store is disabled when Bucket is empty.
type S3Config struct {
	Bucket          string `yaml:"bucket"`          // Target bucket
	Region          string `yaml:"region"`          // AWS region
	Endpoint        string `yaml:"endpoint"`        // Custom endpoint (MinIO etc.), optional
	AccessKeyID     string `yaml:"accessKeyId"`     // Static credentials, optional
	SecretAccessKey string `yaml:"secretAccessKey"` // Static credentials, optional
	UsePathStyle    bool   `yaml:"usePathStyle"`    // Path-style addressing for S3-compatible stores
}

// CorsConfig contains Cross-Origin Resource Sharing (CORS) policy settings.
type CorsConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`   // Allowed origin domains
	AllowedMethods   []string `yaml:"allowedMethods"`   // Allowed HTTP methods
	AllowedHeaders   []string `yaml:"allowedHeaders"`   // Allowed request headers
	AllowCredentials bool     `yaml:"allowCredentials"` // Allow credentials in requests
}

// LoadConfig loads the configuration from YAML files and environment variables.
//
// The function supports multiple configuration sources with the following precedence:
// 1. Environment variables (highest priority)
// 2. Configuration file (if provided)
// 3. Default values (lowest priority)
//
// Environment variables should use underscore notation (e.g., SERVER_PORT for server.port).
//
// Parameters:
//   - configPath: Path to the YAML configuration file. If empty, only environment
//     variables and defaults will be used.
//
// Returns:
//   - *Config: Loaded configuration structure
//   - error: Error if configuration loading fails
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	if configPath != "" {
		log.Printf("📁 Loading config from file: %s", configPath)
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		log.Println("📁 No config file provided — loading from environment variables only")
	}

	// Override config with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5010)
	v.SetDefault("server.contextPath", "")
	v.SetDefault("server.workers", 4)

	v.SetDefault("parser.strict", true)
	v.SetDefault("parser.maxVerificationCount", 100)
	v.SetDefault("parser.maxElementDepth", 512)

	v.SetDefault("postgres.host", "")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "aasxingest")
	v.SetDefault("postgres.maxOpenConnections", 10)
	v.SetDefault("postgres.maxIdleConnections", 5)

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "eu-central-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.usePathStyle", false)

	v.SetDefault("cors.allowedOrigins", []string{"*"})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Content-Type", "X-Filename"})
	v.SetDefault("cors.allowCredentials", false)
}

// PrintConfiguration logs the effective configuration as indented JSON.
// Credentials are masked before printing.
func PrintConfiguration(config *Config) {
	printable := *config
	if printable.Postgres.Password != "" {
		printable.Postgres.Password = "********"
	}
	if printable.S3.SecretAccessKey != "" {
		printable.S3.SecretAccessKey = "********"
	}

	out, err := json.MarshalIndent(printable, "", "  ")
	if err != nil {
		log.Printf("Failed to print configuration: %v", err)
		return
	}
	log.Printf("⚙️  Effective configuration:\n%s", out)
}

// AddCors wires the configured CORS policy into the router.
func AddCors(r *chi.Mux, config *Config) {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.CorsConfig.AllowedOrigins,
		AllowedMethods:   config.CorsConfig.AllowedMethods,
		AllowedHeaders:   config.CorsConfig.AllowedHeaders,
		AllowCredentials: config.CorsConfig.AllowCredentials,
	}))
}
