// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ray-engine/internal/itembank"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Inspect and create item banks",
}

// --- validate subcommand ---

var bankValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Load an item bank and check its integrity",
	Long: `Validate loads the item bank in dir (or the configured bank directory)
and runs every integrity check scoring depends on: the Ray catalog, item
references, archetype coverage of all Ray pairs, and the executive signal
catalog.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBankValidate,
}

func runBankValidate(cmd *cobra.Command, args []string) error {
	dir := cfg.Bank.Dir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("bank directory required: pass it or set bank.dir")
	}

	raw, err := itembank.Load(dir)
	if err != nil {
		return err
	}
	bank, err := itembank.New(raw)
	if err != nil {
		return err
	}
	fmt.Printf("Bank %s is valid: %d items, %d rays, %d tools, %d signals, %d reflection prompts\n",
		bank.Version(), len(bank.Items()), len(bank.Rays()), len(bank.ToolIDs()),
		len(bank.Signals()), len(bank.ReflectionPrompts()))
	return nil
}

// --- sample subcommand ---

var bankSampleCmd = &cobra.Command{
	Use:   "sample <dir>",
	Short: "Write the built-in sample bank to a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := itembank.Save(args[0], itembank.Sample()); err != nil {
			return err
		}
		fmt.Printf("Sample bank written to %s\n", args[0])
		return nil
	},
}

func init() {
	bankCmd.AddCommand(bankValidateCmd)
	bankCmd.AddCommand(bankSampleCmd)
	rootCmd.AddCommand(bankCmd)
}
