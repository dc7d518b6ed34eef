package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the idea list as CSV",
	Long:  "Write the idea list as a ';'-delimited UTF-8 CSV with a byte-order mark. Use --output - to write to stdout.",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"Output file (default: export.filename from config; - for stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.load(cmd.Context()); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := a.store.ExportCSV(&buf); err != nil {
		return err
	}

	path := exportOutput
	if path == "" {
		path = cfg.Export.Filename
	}
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"path":  path,
			"bytes": buf.Len(),
			"ideas": len(a.store.Ideas()),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d ideas to %s\n", len(a.store.Ideas()), path)
	return nil
}
