package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of ray-engine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ray-engine %s (algorithm %s)\n", version, cfg.Audit.AlgorithmVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
