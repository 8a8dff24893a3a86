package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/feeds"
)

// NewSourcesCmd creates the sources command
func NewSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured feed sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, s := range feeds.Sources(config.Get().Feeds.Sources) {
				fmt.Fprintf(out, "%-28s %s\n", s.Name, s.URL)
			}
			return nil
		},
	}
}
