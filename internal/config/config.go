package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

// Manager loads and holds the application configuration.
type Manager struct {
	config *domain.Config
}

// NewManager loads configuration from file, environment, and defaults.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/claims-assist/")

	viper.SetEnvPrefix("CLAIMS_ASSIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.rate_limit_rps", 10)
	viper.SetDefault("server.rate_limit_burst", 20)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "imc_cms")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.migrations_path", "./migrations")

	// Session defaults
	viper.SetDefault("session.backend", "memory")
	viper.SetDefault("session.redis_url", "redis://localhost:6379")
	viper.SetDefault("session.ttl", "30m")

	// Fallback defaults
	viper.SetDefault("fallback.enabled", false)
	viper.SetDefault("fallback.model", "")
	viper.SetDefault("fallback.max_tokens", 500)
	viper.SetDefault("fallback.timeout", "30s")
	viper.SetDefault("fallback.breaker_max_requests", 3)
	viper.SetDefault("fallback.breaker_failure_threshold", 5)

	// Audit log defaults
	viper.SetDefault("audit_log.enabled", true)
	viper.SetDefault("audit_log.path", "./data/assist_audit.db")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns the HTTP server configuration.
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetDatabaseConfig returns the database configuration.
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// Validate checks configuration consistency.
func (m *Manager) Validate() error {
	cfg := m.config

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	switch cfg.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid session backend: %q", cfg.Session.Backend)
	}
	if cfg.Session.Backend == "redis" && cfg.Session.RedisURL == "" {
		return fmt.Errorf("session redis_url is required for the redis backend")
	}
	if cfg.Fallback.Enabled && cfg.Fallback.APIKey == "" {
		return fmt.Errorf("fallback api_key is required when the fallback is enabled")
	}
	if cfg.AuditLog.Enabled && cfg.AuditLog.Path == "" {
		return fmt.Errorf("audit_log path is required when the audit log is enabled")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", cfg.Logging.Level)
	}

	return nil
}
