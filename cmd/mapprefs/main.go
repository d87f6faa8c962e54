package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	mapprefs "github.com/goliatone/go-mapprefs"
	"github.com/goliatone/go-mapprefs/internal/config"
	"github.com/goliatone/go-mapprefs/pkg/activity"
	"github.com/goliatone/go-mapprefs/pkg/activity/usersink"
	"github.com/goliatone/go-mapprefs/pkg/resolver"
	"github.com/goliatone/go-mapprefs/pkg/store"
)

var (
	// Global flags
	configPath  string
	zoneID      string
	storeDriver string
	storePath   string
	verbose     bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mapprefs",
	Short: "Inspect and edit Ember zone map preferences",
	Long: `mapprefs resolves the map preferences of one zone from the stored
tiers (zone defaults, global defaults, zone settings, global settings),
and runs the same edits and explicit save actions the map panel offers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if storeDriver != "" {
			cfg.Store.Driver = storeDriver
		}
		if storePath != "" {
			cfg.Store.Path = storePath
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		zc := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zc.Level = zap.NewAtomicLevelAt(level)
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "mapprefs.yaml", "config file")
	rootCmd.PersistentFlags().StringVarP(&zoneID, "zone", "z", "ironwood", "zone id")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "storage driver (sqlite, file, memory)")
	rootCmd.PersistentFlags().StringVar(&storePath, "path", "", "storage path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		resolveCmd,
		setCmd,
		saveDefaultsCmd,
		resetDefaultsCmd,
		saveGlobalCmd,
		applyGlobalCmd,
		applyAllCmd,
		dragCmd,
		zoomCmd,
		inspectCmd,
		queryCmd,
		zonesCmd,
		fieldsCmd,
		watchCmd,
		historyCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openBackend builds the configured backend. The returned closer is never nil.
func openBackend() (store.Backend, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return store.NewMemoryStore(), noop, nil
	case config.DriverFile:
		return store.NewFileStore(cfg.Store.Path), noop, nil
	case config.DriverSQLite:
		db, err := store.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, noop, err
		}
		return db, db.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newSafe(backend store.Backend) *store.Safe {
	return store.NewSafe(backend,
		store.WithNamespace(cfg.Store.Namespace),
		store.WithLogger(logger.Named("store")),
	)
}

// withSession opens the zone session and runs fn against it.
func withSession(ctx context.Context, fn func(*resolver.Session, *store.Safe) error, viewOpts ...mapprefs.Option) error {
	backend, closeBackend, err := openBackend()
	if err != nil {
		return err
	}
	defer closeBackend()

	safe := newSafe(backend)
	opts := []resolver.Option{
		resolver.WithLogger(logger.Named("resolver")),
		resolver.WithEmitter(newEmitter()),
		resolver.WithViewOptions(append([]mapprefs.Option{
			mapprefs.WithEvaluatorLogger(mapprefs.ZapEvaluatorLogger(logger.Named("query"))),
		}, viewOpts...)...),
	}
	if cfg.SeedZone != "" {
		opts = append(opts, resolver.WithSeedZone(cfg.SeedZone))
	}
	session, err := resolver.Open(ctx, safe, zoneID, opts...)
	if err != nil {
		return err
	}
	return fn(session, safe)
}

func newEmitter() *activity.Emitter {
	hook := activity.HookFunc(func(_ context.Context, event activity.Event) error {
		logger.Info("activity",
			zap.String("verb", event.Verb),
			zap.String("object_type", event.ObjectType),
			zap.String("object_id", event.ObjectID),
			zap.String("channel", event.Channel),
			zap.Any("metadata", event.Metadata),
		)
		return nil
	})
	hooks := activity.Hooks{hook}
	if cfg.Activity.Journal != "" {
		hooks = append(hooks, usersink.Hook{Sink: usersink.NewJournal(cfg.Activity.Journal)})
	}
	return activity.NewEmitter(hooks, cfg.Activity).WithActor(cfg.Activity.ActorID)
}

func printStatus(w io.Writer, ok bool, status, failure string) error {
	if !ok {
		fmt.Fprintln(w, warnStyle.Render(failure))
		return nil
	}
	fmt.Fprintln(w, okStyle.Render(status))
	return nil
}

func splitAssignment(arg string) (string, string, error) {
	path, value, ok := strings.Cut(arg, "=")
	if !ok || strings.TrimSpace(path) == "" {
		return "", "", fmt.Errorf("expected path=value, got %q", arg)
	}
	return strings.TrimSpace(path), strings.TrimSpace(value), nil
}
