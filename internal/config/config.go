// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables (applied in that order, later sources win).
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// TokenSecret is the symmetric key used to sign session tokens.
	// When empty a random key is generated at startup.
	TokenSecret string `json:"token_secret"`

	// LogLevel is the minimum zap level (debug, info, warn, error).
	LogLevel string `json:"log_level"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// CleanupInterval is how often orphaned to-do items are purged.
	CleanupInterval time.Duration `json:"-"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	flag.StringVar(&options.TokenSecret, "k", "", "token signing key")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	flag.StringVar(&options.TLSKey, "tls-key", "", "path to TLS private key")
	flag.DurationVar(&options.CleanupInterval, "cleanup", time.Hour, "orphaned todo cleanup interval")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if err := loadFile(options.Config, options); err != nil {
		log.Fatal(err)
	}

	if err := applyEnv(options); err != nil {
		log.Fatal(err)
	}

	if err := options.validate(); err != nil {
		log.Fatal(err)
	}

	return options
}

// TLSEnabled reports whether both a certificate and a key are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// validate checks values that flags cannot constrain on their own.
func (o *Options) validate() error {
	if o.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %s", o.CleanupInterval)
	}
	return nil
}

// loadFile merges the JSON file at path into opts. A missing file is not an error.
func loadFile(path string, opts *Options) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

// applyEnv overrides opts with any of the supported environment variables.
func applyEnv(opts *Options) error {
	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		opts.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		opts.DatabaseDSN = dsn
	}
	if secret := os.Getenv("TOKEN_SECRET"); secret != "" {
		opts.TokenSecret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		opts.LogLevel = level
	}
	if cert := os.Getenv("TLS_CERT"); cert != "" {
		opts.TLSCert = cert
	}
	if key := os.Getenv("TLS_KEY"); key != "" {
		opts.TLSKey = key
	}
	if interval := os.Getenv("CLEANUP_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("invalid CLEANUP_INTERVAL: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid CLEANUP_INTERVAL: %s is not positive", interval)
		}
		opts.CleanupInterval = d
	}
	return nil
}
