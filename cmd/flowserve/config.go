package main

import (
	"flag"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server configuration. Values resolve in order: defaults,
// then a .env file if present, then environment variables, then command line
// flags.
type Config struct {
	ServerAddress string
	BasePath      string
	DatabaseURL   string
	MigrationsDir string
	CatalogPath   string
	Theme         string
	ThemeVariant  string
	LogLevel      string
	ShutdownGrace time.Duration
	Mode          string
}

// NewConfig reads configuration from the environment and command line.
func NewConfig() *Config {
	viper.SetDefault("SERVER_ADDRESS", ":8484")
	viper.SetDefault("BASE_PATH", "")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("MIGRATIONS_DIR", "")
	viper.SetDefault("CATALOG_PATH", "")
	viper.SetDefault("THEME", "tracker")
	viper.SetDefault("THEME_VARIANT", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SHUTDOWN_GRACE", "5s")

	viper.AutomaticEnv()

	// Read .env when present; real environment variables still win.
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	var (
		addr          = flag.String("a", "", "HTTP listen address")
		basePath      = flag.String("base", "", "URL prefix the tracker is mounted under")
		databaseURL   = flag.String("d", "", "PostgreSQL URL; empty runs the in-memory store")
		migrationsDir = flag.String("migrations", "", "directory of migration files; empty uses the embedded set")
		catalogPath   = flag.String("catalog", "", "YAML catalog seeding projects and violations")
		themeName     = flag.String("theme", "", "theme name")
		themeVariant  = flag.String("variant", "", "theme variant")
		logLevel      = flag.String("level", "", "log level (debug, info, warn, error)")
		grace         = flag.Duration("grace", 0, "shutdown grace period")
	)
	flag.Parse()

	cfg := &Config{
		ServerAddress: viper.GetString("SERVER_ADDRESS"),
		BasePath:      viper.GetString("BASE_PATH"),
		DatabaseURL:   viper.GetString("DATABASE_URL"),
		MigrationsDir: viper.GetString("MIGRATIONS_DIR"),
		CatalogPath:   viper.GetString("CATALOG_PATH"),
		Theme:         viper.GetString("THEME"),
		ThemeVariant:  viper.GetString("THEME_VARIANT"),
		LogLevel:      viper.GetString("LOG_LEVEL"),
		ShutdownGrace: viper.GetDuration("SHUTDOWN_GRACE"),
	}

	if *addr != "" {
		cfg.ServerAddress = *addr
	}
	if *basePath != "" {
		cfg.BasePath = *basePath
	}
	if *databaseURL != "" {
		cfg.DatabaseURL = *databaseURL
	}
	if *migrationsDir != "" {
		cfg.MigrationsDir = *migrationsDir
	}
	if *catalogPath != "" {
		cfg.CatalogPath = *catalogPath
	}
	if *themeName != "" {
		cfg.Theme = *themeName
	}
	if *themeVariant != "" {
		cfg.ThemeVariant = *themeVariant
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *grace > 0 {
		cfg.ShutdownGrace = *grace
	}

	cfg.BasePath = normalizeBasePath(cfg.BasePath)
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 5 * time.Second
	}
	if cfg.DatabaseURL != "" {
		cfg.Mode = "database"
	} else {
		cfg.Mode = "in-memory"
	}
	return cfg
}

func normalizeBasePath(base string) string {
	base = strings.TrimSpace(base)
	base = strings.TrimRight(base, "/")
	if base == "" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return base
}
