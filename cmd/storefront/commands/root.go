package commands

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/storefront/internal/app"
)

var (
	// Global flags
	configPath  string
	prefsPath   string
	apiURL      string
	pollSeconds int
	verbose     bool
)

// rootCmd represents the base command. Without a subcommand it opens the
// interactive browser.
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront - terminal client for the product catalog API",
	Long: `Storefront keeps a normalized, in-memory cache of a product catalog API
and lets you browse and edit it from the terminal.

Run without a subcommand to open the interactive browser. The other
subcommands perform a single fetch or mutation and print the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd.Context())
	},
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.config/storefront/config.toml)")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", "", "Preferences file path (default ~/.config/storefront/prefs.toml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Catalog API base URL (overrides config)")
	rootCmd.PersistentFlags().IntVar(&pollSeconds, "poll", 0, "Refresh interval in seconds for the browser (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
}

func options() app.Options {
	return app.Options{
		ConfigPath: configPath,
		PrefsPath:  prefsPath,
		PollEvery:  pollSeconds,
		APIURL:     apiURL,
	}
}

// withRuntime builds the object graph for a one-shot command, runs fn, and
// flushes telemetry.
func withRuntime(ctx context.Context, fn func(context.Context, *app.Runtime) error) error {
	opts := options()
	cfg, err := app.LoadConfig(opts)
	if err != nil {
		return err
	}
	logger := app.Quiet()
	if verbose {
		logger = log.New(os.Stderr, "storefront: ", log.LstdFlags)
	}
	rt, err := app.Build(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rt.Close(shutdownCtx)
	}()
	return fn(ctx, rt)
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
