package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/storefront/internal/api"
	"github.com/five82/storefront/internal/config"
	"github.com/five82/storefront/internal/optimistic"
	"github.com/five82/storefront/internal/prefs"
	"github.com/five82/storefront/internal/remote"
	"github.com/five82/storefront/internal/state"
	"github.com/five82/storefront/internal/telemetry"
	"github.com/five82/storefront/internal/ui"
)

const serviceName = "storefront"

// Options configure the storefront application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/storefront/prefs.toml
	PollEvery  int    // seconds; zero uses the config value
	APIURL     string // overrides the config value when set
}

// Runtime is the wired object graph shared by every command.
type Runtime struct {
	Config      config.Config
	Prefs       prefs.Prefs
	Store       *state.Store
	Ledger      *optimistic.Manager
	Coordinator *remote.Coordinator

	shutdown func(context.Context) error
}

// LoadConfig loads the config file and applies command-line overrides.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}
	return cfg, nil
}

// Build wires the client, store, ledger and coordinator for cfg. Call
// Close when done.
func Build(ctx context.Context, cfg config.Config, opts Options, logger *log.Logger) (*Runtime, error) {
	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Printf("using default prefs: %v", err)
	}

	client, err := api.NewClient(cfg.APIURL, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, serviceName)
	if err != nil {
		// Tracing is optional; keep going without it.
		logger.Printf("telemetry disabled: %v", err)
	}

	store := state.NewStore()
	store.SelectCategory(userPrefs.CategoryID)
	ledger := optimistic.NewManager(store)

	return &Runtime{
		Config:      cfg,
		Prefs:       userPrefs,
		Store:       store,
		Ledger:      ledger,
		Coordinator: remote.New(client, store, ledger, remote.WithLogger(logger)),
		shutdown:    shutdown,
	}, nil
}

// Close flushes telemetry.
func (r *Runtime) Close(ctx context.Context) error {
	if r.shutdown == nil {
		return nil
	}
	return r.shutdown(ctx)
}

// OpenLog opens path for appending, creating parent directories.
func OpenLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}

// Run boots the storefront TUI until the user quits or ctx is cancelled.
// Logging is redirected to the configured log file while the TUI owns the
// terminal.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	logFile, err := OpenLog(cfg.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()

	prev := log.Writer()
	log.SetOutput(logFile)
	defer log.SetOutput(prev)

	rt, err := Build(ctx, cfg, opts, log.Default())
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rt.Close(shutdownCtx)
	}()
	log.Printf("storefront starting against %s", rt.Config.APIURL)

	return runWith(ctx, rt, opts.PrefsPath, func(ctx context.Context, o ui.Options) error {
		return ui.Run(ctx, o)
	})
}

func runWith(ctx context.Context, rt *Runtime, prefsPath string, runUI func(context.Context, ui.Options) error) error {
	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		return RunPoller(gctx, rt.Coordinator, rt.Config.PollInterval)
	})
	g.Go(func() error {
		defer cancel()
		err := runUI(gctx, ui.Options{
			Store:     rt.Store,
			Actions:   rt.Coordinator,
			ThemeName: rt.Prefs.Theme,
			PrefsPath: prefsPath,
			LogPath:   rt.Config.LogPath(),
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// Quiet returns a logger that discards output, for one-shot commands.
func Quiet() *log.Logger { return log.New(io.Discard, "", 0) }
