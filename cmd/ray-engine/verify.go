// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <run-id>",
	Short: "Check a stored output against its signature pair",
	Long: `Verify recomputes the response and result hashes of the latest stored
output of a run and compares them, and the seal when a key is configured,
with the signature pair recorded when the run was scored.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.Latest(context.Background(), args[0])
	if err != nil {
		return err
	}
	if rec.Signature == nil {
		return fmt.Errorf("run %s has no signature pair", args[0])
	}

	v, err := newSigner(cfg).Verify(rec.Packet, rec.Output, *rec.Signature)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if err := printJSON(v); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(os.Stdout, "Run:        %s\n", args[0])
		fmt.Fprintf(os.Stdout, "Signature:  %s (%s)\n", rec.Signature.ID, rec.Signature.AlgorithmVersion)
		fmt.Fprintf(os.Stdout, "Responses:  %s\n", verdict(v.ResponseMatch))
		fmt.Fprintf(os.Stdout, "Result:     %s\n", verdict(v.ResultMatch))
		if v.SealChecked {
			fmt.Fprintf(os.Stdout, "Seal:       %s\n", verdict(v.SealMatch))
		} else {
			fmt.Fprintln(os.Stdout, "Seal:       not checked")
		}
	}

	if !v.OK() {
		return fmt.Errorf("verification failed: %s", v.Detail)
	}
	return nil
}

func verdict(ok bool) string {
	if ok {
		return "match"
	}
	return "MISMATCH"
}

func init() {
	verifyCmd.Flags().Bool("json", false, "output the verification as JSON")
	rootCmd.AddCommand(verifyCmd)
}
