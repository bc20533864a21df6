package entities

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
	Assets    AssetsConfig    `toml:"assets"`
	Editor    EditorConfig    `toml:"editor"`
	Archive   ArchiveConfig   `toml:"archive"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	if err := c.Assets.Validate(); err != nil {
		return fmt.Errorf("assets config: %w", err)
	}

	if err := c.Editor.Validate(); err != nil {
		return fmt.Errorf("editor config: %w", err)
	}

	if err := c.Archive.Validate(); err != nil {
		return fmt.Errorf("archive config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" {
		if ip := net.ParseIP(s.Host); ip == nil {
			if _, err := net.LookupHost(s.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	if s.ReadTimeout < 0 {
		return errors.New("read timeout must be non-negative")
	}

	if s.WriteTimeout < 0 {
		return errors.New("write timeout must be non-negative")
	}

	if s.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if !isHTTPURL(origin) {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// Address returns host:port for listeners
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, fmt.Sprintf("%d", s.Port))
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server is running in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// StoreDriver selects which document store implementation is used
type StoreDriver string

const (
	StoreDriverRemote StoreDriver = "remote"
	StoreDriverSQLite StoreDriver = "sqlite"
)

// StoreConfig contains document store configuration
type StoreConfig struct {
	Driver       string `toml:"driver"`
	BaseURL      string `toml:"base_url"`
	DataDir      string `toml:"data_dir"`
	Timeout      int    `toml:"timeout"`
	MaxRetries   int    `toml:"max_retries"`
	RetryDelayMs int    `toml:"retry_delay_ms"`
}

// Validate validates store configuration
func (s StoreConfig) Validate() error {
	switch s.GetDriver() {
	case StoreDriverRemote:
		if !isHTTPURL(s.BaseURL) {
			return fmt.Errorf("remote store base URL must start with http:// or https://: %q", s.BaseURL)
		}
	case StoreDriverSQLite:
	default:
		return fmt.Errorf("unknown store driver: %s (must be remote or sqlite)", s.Driver)
	}

	if s.Timeout < 0 {
		return errors.New("store timeout must be non-negative")
	}

	if s.MaxRetries < 0 {
		return errors.New("max retries must be non-negative")
	}

	if s.RetryDelayMs < 0 {
		return errors.New("retry delay must be non-negative")
	}

	return nil
}

// GetDriver returns the driver with default
func (s StoreConfig) GetDriver() StoreDriver {
	if s.Driver == "" {
		return StoreDriverSQLite
	}
	return StoreDriver(s.Driver)
}

// GetTimeout returns the request timeout as a duration
func (s StoreConfig) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}

// GetRetryDelay returns the retry delay as a duration
func (s StoreConfig) GetRetryDelay() time.Duration {
	if s.RetryDelayMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(s.RetryDelayMs) * time.Millisecond
}

// AssetsConfig contains upload storage configuration
type AssetsConfig struct {
	Dir         string `toml:"dir"`
	PublicURL   string `toml:"public_url"`
	MaxUploadMB int    `toml:"max_upload_mb"`
}

// Validate validates assets configuration
func (a AssetsConfig) Validate() error {
	if a.MaxUploadMB < 0 {
		return errors.New("max upload size must be non-negative")
	}

	if a.PublicURL != "" && !strings.HasPrefix(a.PublicURL, "/") && !isHTTPURL(a.PublicURL) {
		return fmt.Errorf("assets public URL must be absolute or a path: %s", a.PublicURL)
	}

	return nil
}

// GetMaxUploadBytes returns the upload limit in bytes (default 10MB)
func (a AssetsConfig) GetMaxUploadBytes() int64 {
	if a.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(a.MaxUploadMB) << 20
}

// GetPublicURL returns the URL prefix assets are served under
func (a AssetsConfig) GetPublicURL() string {
	if a.PublicURL == "" {
		return "/files"
	}
	return strings.TrimRight(a.PublicURL, "/")
}

// EditorConfig contains editor session defaults
type EditorConfig struct {
	DefaultTitle       string `toml:"default_title"`
	AccessLevel        string `toml:"access_level"`
	Autosave           bool   `toml:"autosave"`
	AutosaveDebounceMs int    `toml:"autosave_debounce_ms"`
}

// Validate validates editor configuration
func (e EditorConfig) Validate() error {
	if err := e.GetAccessLevel().Validate(); err != nil {
		return err
	}

	if e.AutosaveDebounceMs < 0 {
		return errors.New("autosave debounce must be non-negative")
	}

	return nil
}

// GetAccessLevel returns the access level for new payloads
func (e EditorConfig) GetAccessLevel() AccessLevel {
	if e.AccessLevel == "" {
		return AccessPrivate
	}
	return AccessLevel(strings.ToUpper(e.AccessLevel))
}

// GetDefaultTitle returns the fallback title
func (e EditorConfig) GetDefaultTitle() string {
	if strings.TrimSpace(e.DefaultTitle) == "" {
		return DefaultTitle
	}
	return e.DefaultTitle
}

// GetAutosaveDebounce returns the autosave debounce as a duration
func (e EditorConfig) GetAutosaveDebounce() time.Duration {
	if e.AutosaveDebounceMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(e.AutosaveDebounceMs) * time.Millisecond
}

// ClonePlacement says where a cloned summary is merged into the current page
type ClonePlacement string

const (
	ClonePlacementHead ClonePlacement = "head"
	ClonePlacementTail ClonePlacement = "tail"
)

// ArchiveConfig contains listing configuration
type ArchiveConfig struct {
	PageSize       int    `toml:"page_size"`
	ClonePlacement string `toml:"clone_placement"`
}

// Validate validates archive configuration
func (a ArchiveConfig) Validate() error {
	if a.PageSize < 0 {
		return errors.New("page size must be non-negative")
	}

	switch a.GetClonePlacement() {
	case ClonePlacementHead, ClonePlacementTail:
	default:
		return fmt.Errorf("invalid clone placement: %s (must be head or tail)", a.ClonePlacement)
	}

	return nil
}

// GetPageSize returns the page size with default
func (a ArchiveConfig) GetPageSize() int {
	if a.PageSize <= 0 {
		return 5
	}
	return a.PageSize
}

// GetClonePlacement returns the clone placement with default
func (a ArchiveConfig) GetClonePlacement() ClonePlacement {
	if a.ClonePlacement == "" {
		return ClonePlacementHead
	}
	return ClonePlacement(a.ClonePlacement)
}

// TelemetryConfig toggles the telemetry sink
type TelemetryConfig struct {
	Enabled bool `toml:"enabled"`
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	Verbose    bool   `toml:"verbose"`     // Enable verbose logging
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
	File       string `toml:"file"`        // Log to file (optional)
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	case "":
		// Empty is okay, will use default
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}

	if l.File != "" {
		if !filepath.IsAbs(l.File) {
			return errors.New("log file path must be absolute")
		}

		dir := filepath.Dir(l.File)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("log file directory does not exist: %s", dir)
		}
	}

	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}

func isHTTPURL(s string) bool {
	return len(s) >= 8 && (strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"))
}
