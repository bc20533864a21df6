package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

func TestConfigMerger_Merge(t *testing.T) {
	merger := NewConfigMerger()

	t.Run("no configs returns defaults", func(t *testing.T) {
		result := merger.Merge()
		require.NotNil(t, result)
		assert.Equal(t, entities.DefaultTitle, result.Editor.DefaultTitle)
	})

	t.Run("later configs take precedence", func(t *testing.T) {
		base := &entities.Config{
			Server:  entities.ServerConfig{Host: "localhost", Port: 8080},
			Store:   entities.StoreConfig{Driver: "sqlite", DataDir: "/data"},
			Archive: entities.ArchiveConfig{PageSize: 5, ClonePlacement: "head"},
		}
		global := &entities.Config{
			Server:  entities.ServerConfig{Port: 9000},
			Archive: entities.ArchiveConfig{PageSize: 10},
		}
		local := &entities.Config{
			Store:   entities.StoreConfig{Driver: "remote", BaseURL: "https://decks.example"},
			Archive: entities.ArchiveConfig{ClonePlacement: "tail"},
		}

		result := merger.Merge(base, global, nil, local)

		assert.Equal(t, "localhost", result.Server.Host)
		assert.Equal(t, 9000, result.Server.Port)
		assert.Equal(t, "remote", result.Store.Driver)
		assert.Equal(t, "https://decks.example", result.Store.BaseURL)
		assert.Equal(t, "/data", result.Store.DataDir)
		assert.Equal(t, 10, result.Archive.PageSize)
		assert.Equal(t, "tail", result.Archive.ClonePlacement)
	})

	t.Run("file layers only switch booleans on", func(t *testing.T) {
		base := &entities.Config{Editor: entities.EditorConfig{Autosave: true}}
		override := &entities.Config{Telemetry: entities.TelemetryConfig{Enabled: true}}

		result := merger.Merge(base, override)

		assert.True(t, result.Editor.Autosave)
		assert.True(t, result.Telemetry.Enabled)
	})

	t.Run("does not alias inputs", func(t *testing.T) {
		base := &entities.Config{Server: entities.ServerConfig{CORSOrigins: []string{"http://a"}}}
		override := &entities.Config{Server: entities.ServerConfig{CORSOrigins: []string{"http://b"}}}

		result := merger.Merge(base, override)
		override.Server.CORSOrigins[0] = "modified"

		assert.Equal(t, []string{"http://b"}, result.Server.CORSOrigins)
		assert.Equal(t, []string{"http://a"}, base.Server.CORSOrigins)
	})
}

func TestConfigMerger_ApplyFlags(t *testing.T) {
	merger := NewConfigMerger()
	base := &entities.Config{
		Server:  entities.ServerConfig{Host: "localhost", Port: 8080},
		Store:   entities.StoreConfig{Driver: "sqlite"},
		Editor:  entities.EditorConfig{Autosave: true},
		Archive: entities.ArchiveConfig{PageSize: 5},
		Logging: entities.LoggingConfig{Level: "info"},
	}

	t.Run("overrides set flags", func(t *testing.T) {
		result := merger.ApplyFlags(base, map[string]interface{}{
			"port":      3000,
			"host":      "0.0.0.0",
			"data-dir":  "/tmp/decks",
			"page-size": 20,
			"access":    "PUBLIC",
			"autosave":  false,
			"verbose":   true,
		})

		assert.Equal(t, 3000, result.Server.Port)
		assert.Equal(t, "0.0.0.0", result.Server.Host)
		assert.Equal(t, "/tmp/decks", result.Store.DataDir)
		assert.Equal(t, 20, result.Archive.PageSize)
		assert.Equal(t, "PUBLIC", result.Editor.AccessLevel)
		assert.False(t, result.Editor.Autosave)
		assert.True(t, result.Logging.Verbose)
		assert.Equal(t, string(entities.LogLevelDebug), result.Logging.Level)

		// The input is untouched
		assert.Equal(t, 8080, base.Server.Port)
		assert.True(t, base.Editor.Autosave)
	})

	t.Run("server flag selects the remote store", func(t *testing.T) {
		result := merger.ApplyFlags(base, map[string]interface{}{"server": "http://decks.local"})

		assert.Equal(t, entities.StoreDriverRemote, result.Store.GetDriver())
		assert.Equal(t, "http://decks.local", result.Store.BaseURL)
	})

	t.Run("ignores zero and mistyped values", func(t *testing.T) {
		result := merger.ApplyFlags(base, map[string]interface{}{
			"port":      0,
			"page-size": "7",
			"host":      "",
			"verbose":   false,
		})

		assert.Equal(t, 8080, result.Server.Port)
		assert.Equal(t, 5, result.Archive.PageSize)
		assert.Equal(t, "localhost", result.Server.Host)
		assert.Equal(t, "info", result.Logging.Level)
	})
}

func TestConfigMerger_ApplyEnvVars(t *testing.T) {
	merger := NewConfigMerger()
	base := &entities.Config{
		Server:  entities.ServerConfig{Host: "localhost", Port: 8080},
		Archive: entities.ArchiveConfig{PageSize: 5},
		Editor:  entities.EditorConfig{Autosave: true},
	}

	t.Run("applies environment", func(t *testing.T) {
		t.Setenv("SLIDEDECK_HOST", "127.0.0.1")
		t.Setenv("SLIDEDECK_PORT", "9100")
		t.Setenv("SLIDEDECK_STORE", "remote")
		t.Setenv("SLIDEDECK_STORE_URL", "https://decks.example")
		t.Setenv("SLIDEDECK_DATA_DIR", "/var/decks")
		t.Setenv("SLIDEDECK_ASSETS_DIR", "/var/decks/files")
		t.Setenv("SLIDEDECK_PAGE_SIZE", "8")
		t.Setenv("SLIDEDECK_AUTOSAVE", "false")
		t.Setenv("SLIDEDECK_TELEMETRY", "true")
		t.Setenv("SLIDEDECK_LOG_LEVEL", "warn")

		result := merger.ApplyEnvVars(base)

		assert.Equal(t, "127.0.0.1", result.Server.Host)
		assert.Equal(t, 9100, result.Server.Port)
		assert.Equal(t, "remote", result.Store.Driver)
		assert.Equal(t, "https://decks.example", result.Store.BaseURL)
		assert.Equal(t, "/var/decks", result.Store.DataDir)
		assert.Equal(t, "/var/decks/files", result.Assets.Dir)
		assert.Equal(t, 8, result.Archive.PageSize)
		assert.False(t, result.Editor.Autosave)
		assert.True(t, result.Telemetry.Enabled)
		assert.Equal(t, "warn", result.Logging.Level)
	})

	t.Run("ignores invalid numbers", func(t *testing.T) {
		t.Setenv("SLIDEDECK_HOST", "")
		t.Setenv("SLIDEDECK_PORT", "not-a-port")
		t.Setenv("SLIDEDECK_PAGE_SIZE", "-2")
		t.Setenv("SLIDEDECK_AUTOSAVE", "maybe")

		result := merger.ApplyEnvVars(base)

		assert.Equal(t, "localhost", result.Server.Host)
		assert.Equal(t, 8080, result.Server.Port)
		assert.Equal(t, 5, result.Archive.PageSize)
		assert.True(t, result.Editor.Autosave)
	})
}

func TestDeepCopy(t *testing.T) {
	assert.Nil(t, deepCopy(nil))

	original := &entities.Config{Server: entities.ServerConfig{Port: 1, CORSOrigins: []string{"http://a"}}}
	copied := deepCopy(original)

	copied.Server.Port = 2
	copied.Server.CORSOrigins[0] = "modified"

	assert.Equal(t, 1, original.Server.Port)
	assert.Equal(t, "http://a", original.Server.CORSOrigins[0])
}
