package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/scaffold-labs/scaffold/internal/cache"
	"github.com/scaffold-labs/scaffold/internal/home"
)

var cacheListJSON bool

func init() {
	cacheListCmd.Flags().BoolVar(&cacheListJSON, "json", false, "Output in JSON format")
	cacheCmd.AddCommand(cacheListCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect installed command packages",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed package versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := home.ResolveLayout()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if layout.Mode == home.ModeBare {
			fmt.Fprintf(out, "Using local package at %s; no cache in use.\n", layout.TargetPath)
			return nil
		}

		entries, err := cache.New(layout.StorePath).List()
		if err != nil {
			return err
		}

		if cacheListJSON {
			if entries == nil {
				entries = []cache.Entry{}
			}
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling cache entries: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(entries) == 0 {
			fmt.Fprintf(out, "No packages installed in %s\n", layout.StorePath)
			return nil
		}
		renderEntries(out, entries)
		return nil
	},
}

func renderEntries(w io.Writer, entries []cache.Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Package", "Version", "Path"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Name, e.Version, e.Path})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}
