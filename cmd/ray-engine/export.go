// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored runs to YAML or JSON",
	Long: `Export writes one entry per stored run: its latest output summary, trend
snapshot, and every signature pair recorded for it. Use --subject to export
a single subject.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")
	subject, _ := cmd.Flags().GetString("subject")
	if out == "" {
		out = "data/export." + format
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	switch format {
	case "yaml":
		err = s.ExportYAML(ctx, out, subject)
	case "json":
		err = s.ExportJSON(ctx, out, subject)
	default:
		return fmt.Errorf("unknown export format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", out)
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("out", "", "output file (default data/export.<format>)")
	exportCmd.Flags().String("subject", "", "export only this subject")

	rootCmd.AddCommand(exportCmd)
}
