package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

// Mock implementations for testing

type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadFile(ctx context.Context, path string) (*entities.Config, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) CreateDefaults(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockConfigLoader) GetGlobalPath() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfigLoader) GetLocalPath(dir string) string {
	args := m.Called(dir)
	return args.String(0)
}

type MockConfigMerger struct {
	mock.Mock
}

func (m *MockConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	args := m.Called(configs)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	args := m.Called(config, flags)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	args := m.Called(config)
	return args.Get(0).(*entities.Config)
}

func TestNewConfigService(t *testing.T) {
	loader := &MockConfigLoader{}
	merger := &MockConfigMerger{}

	service := NewConfigService(loader, merger)

	assert.NotNil(t, service)
	assert.Equal(t, loader, service.loader)
	assert.Equal(t, merger, service.merger)
}

func TestConfigService_LoadConfig(t *testing.T) {
	t.Run("loads and merges config hierarchy", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		defaultConfig := &entities.Config{
			Server:  entities.ServerConfig{Host: "127.0.0.1", Port: 8080},
			Archive: entities.ArchiveConfig{PageSize: 5},
		}
		globalConfig := &entities.Config{
			Archive: entities.ArchiveConfig{PageSize: 10},
		}
		localConfig := &entities.Config{
			Store: entities.StoreConfig{Driver: "remote", BaseURL: "http://decks.internal"},
		}
		mergedConfig := &entities.Config{
			Server:  entities.ServerConfig{Host: "127.0.0.1", Port: 8080},
			Store:   entities.StoreConfig{Driver: "remote", BaseURL: "http://decks.internal"},
			Archive: entities.ArchiveConfig{PageSize: 10},
		}
		envConfig := &entities.Config{
			Server:  entities.ServerConfig{Host: "127.0.0.1", Port: 9000},
			Store:   entities.StoreConfig{Driver: "remote", BaseURL: "http://decks.internal"},
			Archive: entities.ArchiveConfig{PageSize: 10},
		}
		finalConfig := &entities.Config{
			Server:  entities.ServerConfig{Host: "127.0.0.1", Port: 9000},
			Store:   entities.StoreConfig{Driver: "remote", BaseURL: "http://decks.internal"},
			Archive: entities.ArchiveConfig{PageSize: 20},
		}

		flags := map[string]interface{}{
			"page-size": 20,
		}

		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 0
		})).Return(defaultConfig).Once()
		loader.On("LoadGlobal", mock.Anything).Return(globalConfig, nil)
		loader.On("LoadLocal", mock.Anything, "/work").Return(localConfig, nil)
		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 3
		})).Return(mergedConfig)
		merger.On("ApplyEnvVars", mergedConfig).Return(envConfig)
		merger.On("ApplyFlags", envConfig, flags).Return(finalConfig)

		service := NewConfigService(loader, merger)
		result, err := service.LoadConfig(context.Background(), "/work", flags)

		require.NoError(t, err)
		assert.Equal(t, finalConfig, result)
		loader.AssertExpectations(t)
		merger.AssertExpectations(t)
	})

	t.Run("explicit config file replaces local lookup", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		fileConfig := &entities.Config{Archive: entities.ArchiveConfig{PageSize: 7}}
		flags := map[string]interface{}{"config": "/etc/slidedeck.toml"}

		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		loader.On("LoadGlobal", mock.Anything).Return(nil, nil)
		loader.On("LoadFile", mock.Anything, "/etc/slidedeck.toml").Return(fileConfig, nil)
		merger.On("ApplyEnvVars", mock.Anything).Return(&entities.Config{})
		merger.On("ApplyFlags", mock.Anything, flags).Return(fileConfig)

		service := NewConfigService(loader, merger)
		result, err := service.LoadConfig(context.Background(), "/work", flags)

		require.NoError(t, err)
		assert.Equal(t, 7, result.Archive.PageSize)
		loader.AssertNotCalled(t, "LoadLocal", mock.Anything, mock.Anything)
	})

	t.Run("explicit config file error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadFile", mock.Anything, "missing.toml").Return(nil, errors.New("no such file"))

		service := NewConfigService(loader, merger)
		_, err := service.LoadConfig(context.Background(), "/work", map[string]interface{}{"config": "missing.toml"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading config file")
	})

	t.Run("global config error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		loader.On("LoadGlobal", mock.Anything).Return(nil, errors.New("global config error"))
		merger.On("Merge", mock.Anything).Return(&entities.Config{})

		service := NewConfigService(loader, merger)
		_, err := service.LoadConfig(context.Background(), "/work", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading global config")
	})

	t.Run("local config error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/work").Return(nil, errors.New("local config error"))
		merger.On("Merge", mock.Anything).Return(&entities.Config{})

		service := NewConfigService(loader, merger)
		_, err := service.LoadConfig(context.Background(), "/work", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading local config")
	})

	t.Run("validation error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		invalidConfig := &entities.Config{
			Archive: entities.ArchiveConfig{ClonePlacement: "middle"},
		}

		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/work").Return(nil, nil)
		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		merger.On("ApplyEnvVars", mock.Anything).Return(&entities.Config{})
		merger.On("ApplyFlags", mock.Anything, mock.Anything).Return(invalidConfig)

		service := NewConfigService(loader, merger)
		_, err := service.LoadConfig(context.Background(), "/work", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "final config validation")
	})

	t.Run("nil local config merges default and global only", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		finalConfig := &entities.Config{Archive: entities.ArchiveConfig{PageSize: 5}}

		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 0
		})).Return(&entities.Config{}).Once()
		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/work").Return(nil, nil)
		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 2
		})).Return(finalConfig)
		merger.On("ApplyEnvVars", finalConfig).Return(finalConfig)
		merger.On("ApplyFlags", finalConfig, map[string]interface{}(nil)).Return(finalConfig)

		service := NewConfigService(loader, merger)
		result, err := service.LoadConfig(context.Background(), "/work", nil)

		require.NoError(t, err)
		assert.Equal(t, finalConfig, result)
		merger.AssertExpectations(t)
	})
}

func TestConfigService_GetDefaultConfig(t *testing.T) {
	loader := &MockConfigLoader{}
	merger := &MockConfigMerger{}

	expected := &entities.Config{Server: entities.ServerConfig{Port: 8080}}
	merger.On("Merge", mock.Anything).Return(expected)

	service := NewConfigService(loader, merger)

	assert.Equal(t, expected, service.GetDefaultConfig())
	merger.AssertExpectations(t)
}

func TestConfigService_ValidateConfig(t *testing.T) {
	service := NewConfigService(&MockConfigLoader{}, &MockConfigMerger{})

	t.Run("valid config", func(t *testing.T) {
		err := service.ValidateConfig(&entities.Config{
			Server:  entities.ServerConfig{Host: "127.0.0.1", Port: 8080},
			Store:   entities.StoreConfig{Driver: "sqlite"},
			Editor:  entities.EditorConfig{AccessLevel: "public"},
			Archive: entities.ArchiveConfig{PageSize: 5, ClonePlacement: "tail"},
		})
		assert.NoError(t, err)
	})

	t.Run("nil config", func(t *testing.T) {
		err := service.ValidateConfig(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config cannot be nil")
	})

	t.Run("invalid config", func(t *testing.T) {
		err := service.ValidateConfig(&entities.Config{
			Server: entities.ServerConfig{Port: -1},
		})
		assert.Error(t, err)
	})
}

func TestConfigService_CreateGlobalConfig(t *testing.T) {
	t.Run("creates global config", func(t *testing.T) {
		loader := &MockConfigLoader{}
		globalPath := "/home/user/.config/slidedeck/config.toml"

		loader.On("GetGlobalPath").Return(globalPath)
		loader.On("CreateDefaults", mock.Anything, globalPath).Return(nil)

		service := NewConfigService(loader, &MockConfigMerger{})

		assert.NoError(t, service.CreateGlobalConfig(context.Background()))
		loader.AssertExpectations(t)
	})

	t.Run("creation error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		creationError := errors.New("permission denied")

		loader.On("GetGlobalPath").Return("/invalid/path/config.toml")
		loader.On("CreateDefaults", mock.Anything, "/invalid/path/config.toml").Return(creationError)

		service := NewConfigService(loader, &MockConfigMerger{})

		assert.Equal(t, creationError, service.CreateGlobalConfig(context.Background()))
	})
}
