package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("SLIDEDECK_HOST", "localhost"),
			Port:            getEnvIntOrDefault("SLIDEDECK_PORT", 8080),
			ReadTimeout:     getEnvIntOrDefault("SLIDEDECK_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("SLIDEDECK_WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvIntOrDefault("SLIDEDECK_SHUTDOWN_TIMEOUT", 5),
			Environment:     getEnvOrDefault("SLIDEDECK_ENV", "development"),
			CORSOrigins: getEnvSliceOrDefault("SLIDEDECK_CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			}),
		},
		Store: entities.StoreConfig{
			Driver:       getEnvOrDefault("SLIDEDECK_STORE", string(entities.StoreDriverSQLite)),
			BaseURL:      getEnvOrDefault("SLIDEDECK_STORE_URL", "http://localhost:8080"),
			DataDir:      getEnvOrDefault("SLIDEDECK_DATA_DIR", defaultDataDir()),
			Timeout:      getEnvIntOrDefault("SLIDEDECK_STORE_TIMEOUT", 10),
			MaxRetries:   getEnvIntOrDefault("SLIDEDECK_STORE_MAX_RETRIES", 0),
			RetryDelayMs: getEnvIntOrDefault("SLIDEDECK_STORE_RETRY_DELAY", 100),
		},
		Assets: entities.AssetsConfig{
			Dir:         getEnvOrDefault("SLIDEDECK_ASSETS_DIR", filepath.Join(defaultDataDir(), "files")),
			PublicURL:   getEnvOrDefault("SLIDEDECK_ASSETS_URL", "/files"),
			MaxUploadMB: getEnvIntOrDefault("SLIDEDECK_MAX_UPLOAD_MB", 10),
		},
		Editor: entities.EditorConfig{
			DefaultTitle:       entities.DefaultTitle,
			AccessLevel:        getEnvOrDefault("SLIDEDECK_ACCESS_LEVEL", string(entities.AccessPrivate)),
			Autosave:           getEnvBoolOrDefault("SLIDEDECK_AUTOSAVE", false),
			AutosaveDebounceMs: 500,
		},
		Archive: entities.ArchiveConfig{
			PageSize:       getEnvIntOrDefault("SLIDEDECK_PAGE_SIZE", 5),
			ClonePlacement: string(entities.ClonePlacementHead),
		},
		Telemetry: entities.TelemetryConfig{
			Enabled: getEnvBoolOrDefault("SLIDEDECK_TELEMETRY", false),
		},
		Logging: entities.LoggingConfig{
			Level:      getEnvOrDefault("SLIDEDECK_LOG_LEVEL", "info"),
			Verbose:    getEnvBoolOrDefault("SLIDEDECK_LOG_VERBOSE", false),
			JSONFormat: getEnvBoolOrDefault("SLIDEDECK_LOG_JSON", false),
			File:       getEnvOrDefault("SLIDEDECK_LOG_FILE", ""),
		},
	}
}

// defaultDataDir is ~/.slidedeck, or a relative directory when home is unknown
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".slidedeck"
	}
	return filepath.Join(home, ".slidedeck")
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns a comma separated environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
