// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// --- predict ---

var predictCmd = &cobra.Command{
	Use:   "predict [subject-id]",
	Short: "Predict Eclipse trends for a subject",
	Long: `Predict analyzes a subject's stored runs, or the run snapshots in
--history, and reports each Ray's Net Energy trajectory together with any
early Eclipse warnings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPredict,
}

func runPredict(cmd *cobra.Command, args []string) error {
	historyFile, _ := cmd.Flags().GetString("history")

	var runs []types.RunSnapshot
	switch {
	case historyFile != "":
		data, err := os.ReadFile(historyFile)
		if err != nil {
			return fmt.Errorf("reading history file: %w", err)
		}
		if err := yaml.Unmarshal(data, &runs); err != nil {
			return fmt.Errorf("parsing %s: %w", historyFile, err)
		}
	case len(args) == 1:
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		runs, err = s.History(context.Background(), args[0])
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("subject id or --history required")
	}

	pred := newPredictor(cfg).Predict(runs)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(pred)
	}
	return formatPrediction(pred)
}

func formatPrediction(pred types.Prediction) error {
	fmt.Fprintf(os.Stdout, "Runs analyzed: %d  Overall: %s\n\n", pred.RunsAnalyzed, pred.OverallDirection)
	if len(pred.Trends) == 0 {
		fmt.Println("Not enough history for a trend.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-16s  %-10s  %8s  %8s  %9s  %s\n",
		"Ray", "Name", "Direction", "Current", "Velocity", "Predicted", "Streak")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 78))
	for _, t := range pred.Trends {
		fmt.Fprintf(os.Stdout, "%-4s  %-16s  %-10s  %8.2f  %8.2f  %9.2f  %d\n",
			t.RayID, truncate(t.RayName, 16), t.Direction, t.Current, t.Velocity, t.Predicted2W, t.Streak)
	}

	for _, w := range pred.Warnings {
		fmt.Fprintf(os.Stdout, "\n[%s] %s\n  %s\n  (%s)\n", strings.ToUpper(string(w.Level)), w.Message, w.Intervention, w.Rationale)
	}
	return nil
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history <subject-id>",
	Short: "List a subject's stored runs",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.History(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-4s  %-20s  %s\n", "Run", "#", "Completed", "Net Energy R1..R9")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, r := range runs {
		ne := make([]string, 0, len(r.Rays))
		for _, ray := range r.Rays {
			if ray.NetEnergy == nil {
				ne = append(ne, "-")
				continue
			}
			ne = append(ne, fmt.Sprintf("%.1f", *ray.NetEnergy))
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-4d  %-20s  %s\n",
			truncate(r.RunID, 20), r.RunNumber, r.CompletedAt.Format("2006-01-02 15:04"), strings.Join(ne, " "))
	}
	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

func init() {
	predictCmd.Flags().String("history", "", "YAML or JSON file of run snapshots instead of the run store")
	predictCmd.Flags().Bool("json", false, "output the prediction as JSON")
	historyCmd.Flags().Bool("json", false, "output snapshots as JSON")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(historyCmd)
}
