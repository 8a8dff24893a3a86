package handlers

import (
	"io"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/logger"
	"newsdesk/internal/tui"
)

// NewTUICmd creates the interactive search command
func NewTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive semantic search in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log lines would corrupt the alternate screen.
			logger.Configure("error", config.Get().Logging.Format, io.Discard)

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return tui.Run(cmd.Context(), a.search, a.searchOptions())
		},
	}
}
