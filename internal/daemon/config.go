package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/fatoora-app/fatoora/internal/logger"
)

// Config is the daemon configuration, loaded from ~/.fatoora/config.toml
// with FATOORA_* environment overrides on top.
type Config struct {
	API     APIConfig     `toml:"api"`
	Invoice InvoiceConfig `toml:"invoice"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig configures the local HTTP server.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// InvoiceConfig configures authoring behavior.
type InvoiceConfig struct {
	VATRate          float64 `toml:"vat_rate"`
	Currency         string  `toml:"currency"`
	DueDays          int     `toml:"due_days"`
	AutosaveInterval string  `toml:"autosave_interval"` // Go duration, "" disables
}

// StorageConfig configures persistence paths.
type StorageConfig struct {
	Path      string `toml:"path"`       // database file
	ExportDir string `toml:"export_dir"` // default export folder
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns the defaults used when no config file exists.
func DefaultConfig() Config {
	home := homeDir()
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    8432,
			Metrics: true,
		},
		Invoice: InvoiceConfig{
			VATRate:          5.0,
			Currency:         "AED",
			DueDays:          30,
			AutosaveInterval: "30s",
		},
		Storage: StorageConfig{
			Path:      filepath.Join(home, ".fatoora", "fatoora.db"),
			ExportDir: filepath.Join(home, ".fatoora", "exports"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultConfigPath returns ~/.fatoora/config.toml.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".fatoora", "config.toml")
}

// LoadConfig reads the TOML file at path when it exists, then layers
// environment overrides. A missing file is not an error; the defaults
// apply.
func LoadConfig(path string) (Config, error) {
	// .env in the working directory is optional.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)

	if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
		return Config{}, fmt.Errorf("invalid api port %d", cfg.API.Port)
	}
	if cfg.Invoice.VATRate < 0 {
		return Config{}, fmt.Errorf("invalid vat rate %v", cfg.Invoice.VATRate)
	}
	return cfg, nil
}

// LogSettings converts the log section into logger configuration.
func (c Config) LogSettings() logger.Config {
	lc := logger.DefaultConfig()
	if c.Log.Level != "" {
		lc.Level = c.Log.Level
	}
	if c.Log.Format != "" {
		lc.Format = c.Log.Format
	}
	return lc
}

func applyEnv(cfg *Config) {
	cfg.API.Host = getEnv("FATOORA_API_HOST", cfg.API.Host)
	if port, err := strconv.Atoi(os.Getenv("FATOORA_API_PORT")); err == nil {
		cfg.API.Port = port
	}
	cfg.Storage.Path = getEnv("FATOORA_DB_PATH", cfg.Storage.Path)
	cfg.Storage.ExportDir = getEnv("FATOORA_EXPORT_DIR", cfg.Storage.ExportDir)
	cfg.Log.Level = getEnv("FATOORA_LOG_LEVEL", cfg.Log.Level)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
