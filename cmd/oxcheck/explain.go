package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"oxcheck/internal/diag"
)

var explainCmd = &cobra.Command{
	Use:   "explain [code]",
	Short: "Explain a diagnostic code, or list all of them",
	Long:  `Print the one-line explanation behind a diagnostic code such as UseAfterMove; without an argument, list every documented code`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, code := range diag.Codes() {
			fmt.Fprintf(out, "%-24s %s\n", code.String(), code.Summary())
		}
		return nil
	}

	want := strings.ToLower(args[0])
	for _, code := range diag.Codes() {
		if strings.ToLower(code.String()) == want {
			fmt.Fprintf(out, "%s (%d)\n%s\n", code.String(), uint16(code), code.Summary())
			return nil
		}
	}
	return fmt.Errorf("unknown diagnostic code %q", args[0])
}
