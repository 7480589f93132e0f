package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stacklok/formsync-server/internal/app"
	"github.com/stacklok/formsync-server/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the catalog sources and listing cache lifetime",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Usage()
	},
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.FormSyncApp) error {
			s, err := a.Service().GetSettings(ctx)
			if err != nil {
				return err
			}
			return writeSettings(cmd.OutOrStdout(), s)
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the settings given on the command line",
	Long: `Replace the settings given on the command line. Omitted flags keep their
current value.

Example:
  formsync-api settings set --config config.yaml \
    --source https://a.example/jsonapi/webforms --source https://b.example/jsonapi/webforms --ttl 3600`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.FormSyncApp) error {
			current, err := a.Service().GetSettings(ctx)
			if err != nil {
				return err
			}
			raw := current.ToMap()
			if cmd.Flags().Changed("source") {
				sources, err := cmd.Flags().GetStringArray("source")
				if err != nil {
					return err
				}
				raw[settings.KeySources] = sources
			}
			if cmd.Flags().Changed("ttl") {
				ttl, err := cmd.Flags().GetInt("ttl")
				if err != nil {
					return err
				}
				raw[settings.KeySourcesTTL] = ttl
			}

			saved, err := a.Service().SaveSettings(ctx, raw)
			if err != nil {
				return err
			}
			return writeSettings(cmd.OutOrStdout(), saved)
		})
	},
}

func init() {
	addConfigFlag(settingsShowCmd)
	addConfigFlag(settingsSetCmd)

	settingsSetCmd.Flags().StringArray("source", nil, "Catalog list URL (repeatable, replaces all sources)")
	settingsSetCmd.Flags().Int("ttl", 0, "Listing cache lifetime in seconds (0 disables caching)")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func writeSettings(w io.Writer, s settings.Settings) error {
	if _, err := fmt.Fprintf(w, "sources_ttl: %s\nsources:\n", formatTTL(s.SourcesTTL)); err != nil {
		return err
	}
	for _, src := range s.Sources {
		if _, err := fmt.Fprintf(w, "  - %s\n", src); err != nil {
			return err
		}
	}
	return nil
}
