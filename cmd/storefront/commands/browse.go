package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/five82/storefront/internal/app"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive catalog browser",
	Long: `Open the interactive catalog browser. This is the default when no
subcommand is given.

The catalog is refreshed in the background on the configured poll interval;
failed refreshes back off exponentially up to five minutes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(ctx context.Context) error {
	return app.Run(ctx, options())
}
