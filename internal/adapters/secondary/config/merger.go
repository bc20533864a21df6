package config

import (
	"os"
	"strconv"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])
	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if store, ok := flags["store"].(string); ok && store != "" {
		result.Store.Driver = store
	}

	if url, ok := flags["server"].(string); ok && url != "" {
		result.Store.BaseURL = url
		result.Store.Driver = string(entities.StoreDriverRemote)
	}

	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		result.Store.DataDir = dataDir
	}

	if pageSize, ok := flags["page-size"].(int); ok && pageSize > 0 {
		result.Archive.PageSize = pageSize
	}

	if access, ok := flags["access"].(string); ok && access != "" {
		result.Editor.AccessLevel = access
	}

	if autosave, ok := flags["autosave"].(bool); ok {
		result.Editor.Autosave = autosave
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
		result.Logging.Level = string(entities.LogLevelDebug)
	}

	return result
}

// ApplyEnvVars applies environment variable overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	if host := os.Getenv("SLIDEDECK_HOST"); host != "" {
		result.Server.Host = host
	}

	if portStr := os.Getenv("SLIDEDECK_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			result.Server.Port = port
		}
	}

	if driver := os.Getenv("SLIDEDECK_STORE"); driver != "" {
		result.Store.Driver = driver
	}

	if url := os.Getenv("SLIDEDECK_STORE_URL"); url != "" {
		result.Store.BaseURL = url
	}

	if dataDir := os.Getenv("SLIDEDECK_DATA_DIR"); dataDir != "" {
		result.Store.DataDir = dataDir
	}

	if assetsDir := os.Getenv("SLIDEDECK_ASSETS_DIR"); assetsDir != "" {
		result.Assets.Dir = assetsDir
	}

	if sizeStr := os.Getenv("SLIDEDECK_PAGE_SIZE"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size > 0 {
			result.Archive.PageSize = size
		}
	}

	if autosaveStr := os.Getenv("SLIDEDECK_AUTOSAVE"); autosaveStr != "" {
		if autosave, err := strconv.ParseBool(autosaveStr); err == nil {
			result.Editor.Autosave = autosave
		}
	}

	if telemetryStr := os.Getenv("SLIDEDECK_TELEMETRY"); telemetryStr != "" {
		if enabled, err := strconv.ParseBool(telemetryStr); err == nil {
			result.Telemetry.Enabled = enabled
		}
	}

	if level := os.Getenv("SLIDEDECK_LOG_LEVEL"); level != "" {
		result.Logging.Level = level
	}

	return result
}

// mergeInto merges source configuration into target configuration.
// TOML cannot distinguish false from unset, so file layers can only switch
// booleans on; env vars and flags switch them off.
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = append([]string(nil), source.Server.CORSOrigins...)
	}

	// Store config
	if source.Store.Driver != "" {
		target.Store.Driver = source.Store.Driver
	}
	if source.Store.BaseURL != "" {
		target.Store.BaseURL = source.Store.BaseURL
	}
	if source.Store.DataDir != "" {
		target.Store.DataDir = source.Store.DataDir
	}
	if source.Store.Timeout != 0 {
		target.Store.Timeout = source.Store.Timeout
	}
	if source.Store.MaxRetries != 0 {
		target.Store.MaxRetries = source.Store.MaxRetries
	}
	if source.Store.RetryDelayMs != 0 {
		target.Store.RetryDelayMs = source.Store.RetryDelayMs
	}

	// Assets config
	if source.Assets.Dir != "" {
		target.Assets.Dir = source.Assets.Dir
	}
	if source.Assets.PublicURL != "" {
		target.Assets.PublicURL = source.Assets.PublicURL
	}
	if source.Assets.MaxUploadMB != 0 {
		target.Assets.MaxUploadMB = source.Assets.MaxUploadMB
	}

	// Editor config
	if source.Editor.DefaultTitle != "" {
		target.Editor.DefaultTitle = source.Editor.DefaultTitle
	}
	if source.Editor.AccessLevel != "" {
		target.Editor.AccessLevel = source.Editor.AccessLevel
	}
	if source.Editor.Autosave {
		target.Editor.Autosave = true
	}
	if source.Editor.AutosaveDebounceMs != 0 {
		target.Editor.AutosaveDebounceMs = source.Editor.AutosaveDebounceMs
	}

	// Archive config
	if source.Archive.PageSize != 0 {
		target.Archive.PageSize = source.Archive.PageSize
	}
	if source.Archive.ClonePlacement != "" {
		target.Archive.ClonePlacement = source.Archive.ClonePlacement
	}

	if source.Telemetry.Enabled {
		target.Telemetry.Enabled = true
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.Verbose {
		target.Logging.Verbose = true
	}
	if source.Logging.JSONFormat {
		target.Logging.JSONFormat = true
	}
	if source.Logging.File != "" {
		target.Logging.File = source.Logging.File
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src
	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = make([]string, len(src.Server.CORSOrigins))
		copy(dst.Server.CORSOrigins, src.Server.CORSOrigins)
	}

	return &dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
