package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	defaultEnv            = "dev"
	defaultDBPath         = "./dev.db"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultContractMonths = 12
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env       string
	DBPath    string
	Port      string
	LogLevel  string
	LogFormat string
	// RulesFile optionally points at an HCL file overriding service descriptors.
	RulesFile            string
	GlobalContractMonths int
}

// IsDev reports whether the app runs in local development.
func (c Config) IsDev() bool {
	return c.Env == "" || strings.EqualFold(c.Env, "dev") || strings.EqualFold(c.Env, "development")
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: a missing .env is fine, production injects real variables.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: read .env: %v", err)
	}

	cfg := Config{
		Env:       os.Getenv("APP_ENV"),
		DBPath:    os.Getenv("DB_PATH"),
		Port:      os.Getenv("PORT"),
		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: os.Getenv("LOG_FORMAT"),
		RulesFile: os.Getenv("RULES_FILE"),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
	}

	cfg.GlobalContractMonths = defaultContractMonths
	if raw := os.Getenv("GLOBAL_CONTRACT_MONTHS"); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			log.Printf("warning: GLOBAL_CONTRACT_MONTHS=%q is not a number, using %d", raw, defaultContractMonths)
		} else {
			cfg.GlobalContractMonths = n
		}
	}

	return cfg
}
