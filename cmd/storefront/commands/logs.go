package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/storefront/cmd/storefront/output"
	"github.com/five82/storefront/internal/app"
	"github.com/five82/storefront/internal/logtail"
)

var (
	// Logs flags
	logLines int
	logLevel string
	logGrep  string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the tail of the storefront log",
	Long: `Print the tail of the storefront log written by the browser.

Examples:
  storefront logs -n 50
  storefront logs --level warn --grep product:7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		minLevel, err := parseSeverity(logLevel)
		if err != nil {
			return err
		}
		cfg, err := app.LoadConfig(options())
		if err != nil {
			return err
		}
		lines, err := logtail.Read(cfg.LogPath(), logLines)
		if err != nil {
			return err
		}
		lines = logtail.Filter(lines, logGrep, minLevel)
		w := out(cmd)
		if len(lines) == 0 {
			output.Muted(w, "No matching log lines in %s", cfg.LogPath())
			return nil
		}
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logLines, "lines", "n", 200, "Number of lines to read from the end (0 reads all)")
	logsCmd.Flags().StringVar(&logLevel, "level", "info", "Minimum severity: info, warn, or error")
	logsCmd.Flags().StringVar(&logGrep, "grep", "", "Only show lines containing this text")
}

func parseSeverity(s string) (logtail.Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return logtail.SeverityInfo, nil
	case "warn", "warning":
		return logtail.SeverityWarn, nil
	case "error":
		return logtail.SeverityError, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}
