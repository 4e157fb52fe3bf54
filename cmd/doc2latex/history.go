// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/doc2latex/internal/history"
	"github.com/pdiddy/doc2latex/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or export past conversions",
	Long: `History reads the SQLite log of conversions kept by convert. Use list to
print recent runs or export to write them all to YAML or JSON next to the
database.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversions, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.Open(historyConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), listOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistory(os.Stdout, records, jsonOutput)
}

func formatHistory(w io.Writer, records []types.ConversionRecord, jsonOutput bool) error {
	if jsonOutput {
		if records == nil {
			records = []types.ConversionRecord{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-19s  %-9s  %-5s  %-30s  %s\n", "Started", "Status", "Type", "Source", "Result")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range records {
		source := filepath.Base(r.Source.Path)
		if len(source) > 30 {
			source = source[:27] + "..."
		}
		result := filepath.Base(r.ArchivePath)
		if r.Status == types.ConversionFailed {
			result = r.Error
		}
		fmt.Fprintf(w, "%-19s  %-9s  %-5s  %-30s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.Source.Format, source, result)
	}

	fmt.Fprintf(w, "\n%d conversions\n", len(records))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the conversion history to YAML or JSON",
	Long: `Export writes every recorded conversion (or a filtered subset) to
export.yaml or export.json in the directory holding the history database.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := history.Open(historyConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	opts := listOptsFromFlags(cmd)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func listOptsFromFlags(cmd *cobra.Command) history.ListOptions {
	status, _ := cmd.Flags().GetString("status")
	format, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	return history.ListOptions{
		Limit:  limit,
		Status: types.ConversionStatus(status),
		Format: types.SourceFormat(format),
	}
}

func init() {
	historyCmd.PersistentFlags().Int("max-results", 20, "default number of conversions listed")
	viper.BindPFlag("history_max_results", historyCmd.PersistentFlags().Lookup("max-results"))

	// Shared filter flags.
	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().String("status", "", "filter by status: converted or failed")
		c.Flags().String("type", "", "filter by source type: pdf, docx, doc, or unknown")
	}

	historyListCmd.Flags().Int("limit", 0, "maximum conversions listed (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output conversions as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
