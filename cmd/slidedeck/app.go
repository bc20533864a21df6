package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/assets"
	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/config"
	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/logging"
	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/parser"
	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/store/remote"
	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/store/sqlite"
	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/telemetry"
	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
	"github.com/fredcamaral/slidedeck/internal/domain/services"
)

// app holds the collaborators shared by the document commands
type app struct {
	cfg       *entities.Config
	log       *logging.Logger
	store     ports.DocumentStore
	assets    ports.AssetStore
	disk      *assets.DiskStore
	telemetry ports.Telemetry
	parser    *parser.DocumentParserAdapter
	out       io.Writer
	errOut    io.Writer
	closers   []func() error
}

// collectFlags returns the flags the user set explicitly, keyed by name
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})

	cmd.Flags().Visit(func(f *pflag.Flag) {
		value := f.Value.String()
		switch f.Value.Type() {
		case "int":
			if n, err := strconv.Atoi(value); err == nil {
				flags[f.Name] = n
			}
		case "bool":
			if b, err := strconv.ParseBool(value); err == nil {
				flags[f.Name] = b
			}
		default:
			flags[f.Name] = value
		}
	})

	return flags
}

// loadConfig resolves configuration with precedence
// CLI flags > env > local config > global config > defaults
func loadConfig(cmd *cobra.Command) (*entities.Config, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	service := services.NewConfigService(config.NewTOMLLoader(), config.NewConfigMerger())

	cfg, err := service.LoadConfig(cmd.Context(), workingDir, collectFlags(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	return cfg, nil
}

// newApp loads configuration and opens the configured stores
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		log:       logger,
		telemetry: telemetry.New(cfg.Telemetry, *logger.Zerolog()),
		parser:    parser.NewDocumentParserAdapter(),
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
		closers:   []func() error{logger.Close},
	}

	if err := a.openStores(); err != nil {
		_ = a.Close()
		return nil, err
	}

	logger.Zerolog().Debug().
		Str("driver", string(cfg.Store.GetDriver())).
		Str("command", cmd.Name()).
		Msg("configuration loaded")

	return a, nil
}

// openStores builds the document and asset stores for the configured driver
func (a *app) openStores() error {
	switch a.cfg.Store.GetDriver() {
	case entities.StoreDriverRemote:
		client := ports.NewRealHTTPClient(ports.HTTPClientConfig{
			Timeout:    a.cfg.Store.GetTimeout(),
			MaxRetries: a.cfg.Store.MaxRetries,
			RetryDelay: a.cfg.Store.GetRetryDelay(),
			UserAgent:  "slidedeck/" + Version,
		})
		remoteCfg := remote.Config{
			BaseURL: a.cfg.Store.BaseURL,
			Client:  client,
			Logger:  *a.Logger(),
		}

		store, err := remote.NewDocumentStore(remoteCfg)
		if err != nil {
			return err
		}
		files, err := remote.NewAssetStore(remoteCfg)
		if err != nil {
			return err
		}
		a.store, a.assets = store, files

	case entities.StoreDriverSQLite:
		store, err := sqlite.NewStore(a.cfg.Store.DataDir, sqlite.WithLogger(*a.Logger()))
		if err != nil {
			return err
		}
		a.closers = append(a.closers, store.Close)

		disk, err := assets.NewDiskStore(a.cfg.Assets, *a.Logger())
		if err != nil {
			return err
		}
		a.store, a.assets, a.disk = store, disk, disk

	default:
		return fmt.Errorf("unknown store driver: %s", a.cfg.Store.Driver)
	}

	return nil
}

// Close releases stores and the log file, newest first
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Logger returns the root logger
func (a *app) Logger() *zerolog.Logger {
	return a.log.Zerolog()
}

// notifier prints acknowledgments on the error stream
func (a *app) notifier() ports.Notifier {
	return ports.NotifierFunc(func(level ports.NoticeLevel, message string) {
		if level == ports.NoticeSuccess {
			fmt.Fprintln(a.errOut, message)
			return
		}
		fmt.Fprintf(a.errOut, "%s: %s\n", level, message)
	})
}

// newSession opens an editor session against the configured stores
func (a *app) newSession() *services.EditorSession {
	return services.NewEditorSession(a.store, a.assets, a.parser, services.EditorOptions{
		AccessLevel:  a.cfg.Editor.GetAccessLevel(),
		DefaultTitle: a.cfg.Editor.GetDefaultTitle(),
		Telemetry:    a.telemetry,
		Notifier:     a.notifier(),
		Navigator:    logNavigator{logger: a.log.Component("navigator")},
		Logger:       a.Logger(),
	})
}

// newCollection opens the archive listing against the configured store
func (a *app) newCollection() *services.Collection {
	return services.NewCollection(a.store, services.CollectionOptions{
		PageSize:       a.cfg.Archive.GetPageSize(),
		ClonePlacement: a.cfg.Archive.GetClonePlacement(),
		Telemetry:      a.telemetry,
		Notifier:       a.notifier(),
		Logger:         a.Logger(),
	})
}

// logNavigator records navigation requests; a terminal has no views to switch
type logNavigator struct {
	logger zerolog.Logger
}

func (n logNavigator) ToEditor(id entities.DocumentID) {
	n.logger.Debug().Stringer("id", id).Msg("navigate to editor")
}

func (n logNavigator) ToArchive() {
	n.logger.Debug().Msg("navigate to archive")
}

// documentIDArg parses the positional identifier of a command
func documentIDArg(args []string, i int) (entities.DocumentID, error) {
	if len(args) <= i {
		return 0, errors.New("missing document id")
	}
	id, err := entities.ParseDocumentID(args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}
	return id, nil
}

// readDocument reads a document from path, or stdin when path is "-"
func readDocument(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is supplied by the user
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

var _ ports.Navigator = logNavigator{}
