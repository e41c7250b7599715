// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ray-engine/internal/pipeline"
	"github.com/pdiddy/ray-engine/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score <run-file>...",
	Short: "Score one or more completed runs",
	Long: `Score reads run files (YAML or JSON, one run or a list of runs per file),
scores each run against the item bank, signs the output, and records it in
the run store. Runs are scored concurrently; a rejected run does not stop
the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	var runs []types.RunInput
	for _, path := range args {
		rs, err := readRuns(path)
		if err != nil {
			return err
		}
		runs = append(runs, rs...)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p := newPipeline(cfg)
	batch, err := p.RunBatch(ctx, runs, cfg.Batch.Workers)
	if err != nil {
		return err
	}

	if noStore, _ := cmd.Flags().GetBool("no-store"); !noStore {
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		for _, res := range batch.Results {
			if err := s.SaveResult(ctx, res.Packet, res.Output, res.Signature); err != nil {
				return fmt.Errorf("saving run %s: %w", res.Output.RunID, err)
			}
		}
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if err := formatScoreOutput(batch, jsonOutput); err != nil {
		return err
	}
	if batch.Rejected+batch.Failed > 0 {
		return fmt.Errorf("%d run(s) rejected, %d failed", batch.Rejected, batch.Failed)
	}
	return nil
}

// readRuns decodes a run file holding either a single run or a list.
func readRuns(path string) ([]types.RunInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%s: empty run file", path)
	}

	var runs []types.RunInput
	if doc.Content[0].Kind == yaml.SequenceNode {
		err = doc.Content[0].Decode(&runs)
	} else {
		var run types.RunInput
		err = doc.Content[0].Decode(&run)
		runs = append(runs, run)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return runs, nil
}

func formatScoreOutput(batch pipeline.BatchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		out := make([]map[string]any, 0, len(batch.Results))
		for _, res := range batch.Results {
			out = append(out, map[string]any{"output": res.Output, "signature": res.Signature})
		}
		return enc.Encode(out)
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-10s  %-16s  %-10s  %-24s  %s\n",
		"Run", "Confidence", "Gating", "Eclipse", "Archetype", "Signature")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, res := range batch.Results {
		o := res.Output
		archetype := string(o.LightSignature.MatchStatus)
		if a := o.LightSignature.Archetype; a != nil {
			archetype = a.Name
		}
		sig := "-"
		if res.Signature != nil {
			sig = res.Signature.ID
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-10s  %-16s  %-10s  %-24s  %s\n",
			truncate(o.RunID, 20), o.DataQuality.ConfidenceBand, o.DataQuality.Gating.Mode,
			o.Eclipse.Level, truncate(archetype, 24), sig)
	}
	for _, err := range batch.Errors {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	fmt.Fprintf(os.Stdout, "\n%d scored, %d rejected, %d failed\n", batch.Scored, batch.Rejected, batch.Failed)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// printJSON writes v to stdout, indented.
func printJSON(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := os.Stdout.Write(buf.Bytes())
	return err
}

func init() {
	scoreCmd.Flags().Int("workers", 0, "concurrent scoring workers (default from config)")
	scoreCmd.Flags().Bool("no-store", false, "do not record results in the run store")
	scoreCmd.Flags().Bool("json", false, "output full results as JSON")
	_ = viper.BindPFlag("batch.workers", scoreCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(scoreCmd)
}
