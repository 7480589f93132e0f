package app

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/formsync-server/internal/app"
	"github.com/stacklok/formsync-server/internal/catalog"
	"github.com/stacklok/formsync-server/internal/importer"
	"github.com/stacklok/formsync-server/internal/provenance"
	"github.com/stacklok/formsync-server/internal/refresh"
)

var importCmd = &cobra.Command{
	Use:   "import URL",
	Short: "Import the form published at URL",
	Long: `Import the form published at URL, creating a local form or updating the one
previously imported from the same URL. The result is printed as YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.FormSyncApp) error {
			res, err := a.Service().Import(ctx, args[0])
			if err != nil {
				return err
			}
			return writeImportResult(cmd.OutOrStdout(), res)
		})
	},
}

var importedCmd = &cobra.Command{
	Use:   "imported",
	Short: "List imported forms and their source URLs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.FormSyncApp) error {
			records, err := a.Service().ListImported(ctx)
			if err != nil {
				return err
			}
			return writeImportedTable(cmd.OutOrStdout(), records)
		})
	},
}

var availableCmd = &cobra.Command{
	Use:   "available",
	Short: "List forms advertised by the configured sources",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.FormSyncApp) error {
			entries, err := a.Service().ListAvailable(ctx)
			if err != nil {
				return err
			}
			return writeAvailableTable(cmd.OutOrStdout(), entries)
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-import every form whose update interval has elapsed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.FormSyncApp) error {
			summary, err := refresh.New(a.Service()).RunOnce(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "checked: %d, refreshed: %d, failed: %d\n",
				summary.Checked, summary.Refreshed, summary.Failed)
			return err
		})
	},
}

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "Manage local forms",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Usage()
	},
}

var formsSyncCmd = &cobra.Command{
	Use:   "sync ID",
	Short: "Change whether a form is published and how often it is re-imported",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.FormSyncApp) error {
			f, err := a.Service().GetForm(ctx, args[0])
			if err != nil {
				return err
			}
			settings := f.Sync
			if cmd.Flags().Changed("publish") {
				if settings.Publish, err = cmd.Flags().GetBool("publish"); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("interval") {
				if settings.UpdateInterval, err = cmd.Flags().GetInt("interval"); err != nil {
					return err
				}
			}

			f, err = a.Service().UpdateSyncSettings(ctx, args[0], settings)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: publish=%t updateInterval=%d\n",
				f.ID, f.Sync.Publish, f.Sync.UpdateInterval)
			return err
		})
	},
}

var formsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a local form and its import record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.FormSyncApp) error {
			return a.Service().DeleteForm(ctx, args[0])
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{importCmd, importedCmd, availableCmd, refreshCmd, formsSyncCmd, formsDeleteCmd} {
		addConfigFlag(cmd)
	}

	formsSyncCmd.Flags().Bool("publish", false, "Expose the form in the local catalog")
	formsSyncCmd.Flags().Int("interval", 0, "Re-import interval in seconds (0 = manual)")

	formsCmd.AddCommand(formsSyncCmd)
	formsCmd.AddCommand(formsDeleteCmd)
}

type importOutput struct {
	ID      string `yaml:"id"`
	UUID    string `yaml:"uuid"`
	URL     string `yaml:"url"`
	Created bool   `yaml:"created"`
}

func writeImportResult(w io.Writer, res *importer.Result) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(importOutput{
		ID:      res.Form.ID,
		UUID:    res.Form.UUID,
		URL:     res.Record.SourceURL,
		Created: res.Created,
	}); err != nil {
		return err
	}
	return enc.Close()
}

func writeImportedTable(w io.Writer, records []*provenance.Record) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Source URL", "Updated")
	for _, r := range records {
		if err := table.Append([]string{r.LocalFormID, r.SourceURL, r.UpdatedAt.UTC().Format(time.RFC3339)}); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeAvailableTable(w io.Writer, entries []catalog.Entry) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Title", "URL")
	for _, e := range entries {
		title, _ := e.Attributes["title"].(string)
		if err := table.Append([]string{e.ID, title, e.SourceURL}); err != nil {
			return err
		}
	}
	return table.Render()
}

// formatTTL renders a listing cache lifetime in seconds
func formatTTL(seconds int) string {
	if seconds <= 0 {
		return "disabled"
	}
	return strconv.Itoa(seconds) + "s"
}
