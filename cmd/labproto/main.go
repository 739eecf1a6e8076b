package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gravitrone/labproto/cli/internal/cmd"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly.
	// Must be set before any lipgloss style initialization.
	os.Setenv("COLORTERM", "truecolor")
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "labproto",
		Short: "labproto - laboratory protocol editor",
		Long:  "labproto: author lab protocols, reorder their sections, and save them to the protocol server.",
		RunE: func(c *cobra.Command, _ []string) error {
			return runTUI(c.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(cmd.LoginCmd())
	root.AddCommand(cmd.EditCmd())
	root.AddCommand(cmd.ListCmd())
	root.AddCommand(cmd.ShowCmd())
	root.AddCommand(cmd.PushCmd())
	return root
}

func runTUI(ctx context.Context) error {
	return cmd.RunTUI(ctx)
}
