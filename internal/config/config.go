// Package config resolves server configuration from the environment, an
// optional .env file, and an optional JSON config file. Connection
// credentials resolved here are only a fallback: an explicit connect_db
// call always takes precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all server configuration.
type Config struct {
	LogLevel       string
	QueryTimeoutMS int
	DBConfig       DatabaseConfig
}

// DatabaseConfig holds the fallback database credentials used for
// auto-connect when no explicit connect_db call has been issued.
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// Complete reports whether the credentials are usable for a connection
// attempt. The database name is optional.
func (c DatabaseConfig) Complete() bool {
	return c.Host != "" && c.User != "" && c.Password != ""
}

// Environment variable alias families, checked in order. The camelCase
// names are kept for compatibility with launchers that forward them.
var (
	hostAliases     = []string{"MYSQL_HOST", "DB_HOST", "mysqlHost"}
	portAliases     = []string{"MYSQL_PORT", "DB_PORT", "mysqlPort"}
	userAliases     = []string{"MYSQL_USER", "DB_USER", "mysqlUser"}
	passwordAliases = []string{"MYSQL_PASSWORD", "DB_PASSWORD", "mysqlPassword"}
	databaseAliases = []string{"MYSQL_DATABASE", "DB_NAME", "mysqlDatabase"}
)

// LoadConfig loads the configuration. Precedence, lowest first: JSON config
// file at configPath (if any), then environment variables (a .env file in
// the working directory is loaded into the environment when present).
func LoadConfig(configPath string) (*Config, error) {
	// Ignore error when .env doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DBConfig: DatabaseConfig{
			Port: 3306,
		},
	}

	timeout, err := strconv.Atoi(getEnv("MYSQL_QUERY_TIMEOUT_MS", "5000"))
	if err != nil || timeout <= 0 {
		timeout = 5000
	}
	cfg.QueryTimeoutMS = timeout

	if configPath != "" {
		if err := loadFileConfig(configPath, &cfg.DBConfig); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(&cfg.DBConfig)

	return cfg, nil
}

// loadFileConfig merges a JSON credentials blob into dst.
func loadFileConfig(path string, dst *DatabaseConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fileCfg DatabaseConfig
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fileCfg.Host != "" {
		dst.Host = fileCfg.Host
	}
	if fileCfg.Port != 0 {
		dst.Port = fileCfg.Port
	}
	if fileCfg.User != "" {
		dst.User = fileCfg.User
	}
	if fileCfg.Password != "" {
		dst.Password = fileCfg.Password
	}
	if fileCfg.Database != "" {
		dst.Database = fileCfg.Database
	}
	return nil
}

func applyEnvOverrides(dst *DatabaseConfig) {
	if v := firstEnv(hostAliases); v != "" {
		dst.Host = v
	}
	if v := firstEnv(portAliases); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			dst.Port = port
		}
	}
	if v := firstEnv(userAliases); v != "" {
		dst.User = v
	}
	if v := firstEnv(passwordAliases); v != "" {
		dst.Password = v
	}
	if v := firstEnv(databaseAliases); v != "" {
		dst.Database = v
	}
}

// firstEnv returns the first non-empty value among the alias names.
func firstEnv(names []string) string {
	for _, name := range names {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	return ""
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
