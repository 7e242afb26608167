package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Backend names accepted by Config.Backend.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config carries everything the store and the CLI need to start.
type Config struct {
	ResourceDir string
	DataDir     string
	ImageDir    string
	Backend     string
	SQLitePath  string
	Env         string
	LogLevel    string
}

// Default mirrors the on-disk layout the store has always used.
func Default() Config {
	return Config{
		ResourceDir: "resources",
		DataDir:     filepath.Join("resources", "dat"),
		ImageDir:    filepath.Join("resources", "img", "books"),
		Backend:     BackendCSV,
		SQLitePath:  filepath.Join("resources", "dat", "bookstore.db"),
		Env:         "dev",
		LogLevel:    "warn",
	}
}

// Load applies, in order, the defaults, an optional .env file and the process environment.
// A missing .env file is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	cfg.ResourceDir = getenvDefault("BOOKSTORE_RESOURCE_DIR", cfg.ResourceDir)
	cfg.DataDir = getenvDefault("BOOKSTORE_DATA_DIR", filepath.Join(cfg.ResourceDir, "dat"))
	cfg.ImageDir = getenvDefault("BOOKSTORE_IMAGE_DIR", filepath.Join(cfg.ResourceDir, "img", "books"))
	cfg.Backend = getenvDefault("BOOKSTORE_BACKEND", cfg.Backend)
	cfg.SQLitePath = getenvDefault("BOOKSTORE_SQLITE_PATH", filepath.Join(cfg.DataDir, "bookstore.db"))
	cfg.Env = getenvDefault("ENV", cfg.Env)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)
	return cfg, cfg.Validate()
}

// Validate reports configuration values the store cannot run with.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendCSV, BackendSQLite)
	}
	if c.DataDir == "" {
		return errors.New("data directory cannot be empty")
	}
	if c.Backend == BackendSQLite && c.SQLitePath == "" {
		return errors.New("sqlite path cannot be empty")
	}
	return nil
}

// CheckResources fails when the resource directory is missing.
func (c Config) CheckResources() error {
	info, err := os.Stat(c.ResourceDir)
	if err != nil {
		return fmt.Errorf("failed to locate the resources folder %q: %w", c.ResourceDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("resources path %q is not a directory", c.ResourceDir)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
