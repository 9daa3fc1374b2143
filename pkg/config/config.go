package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config is passed explicitly to everything that needs it.
type Config struct {
	SiteRoot   string // root of the static site project
	DataDir    string // relative to SiteRoot; empty means ask the site config
	AppURL     string // base of api_url values
	ListenAddr string
	LogLevel   string
	LogFormat  string
}

// Load reads .env (if any) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Error loading .env file:", err)
	}

	return Config{
		SiteRoot:   getEnv("SITE_ROOT", "."),
		DataDir:    getEnv("DATA_DIR", ""),
		AppURL:     getEnv("APP_URL", "http://localhost:4000"),
		ListenAddr: getEnv("LISTEN_ADDR", ":4000"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
	}
}

// Validate checks the settings that have no usable default.
func (c Config) Validate() error {
	if c.SiteRoot == "" {
		return fmt.Errorf("site root must not be empty")
	}
	if c.AppURL == "" {
		return fmt.Errorf("app url must not be empty")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
