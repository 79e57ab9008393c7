package cli

import (
	"log"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "workforcectl",
		Short:         "Inspect certificate lifecycles and shift rotations from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExpiryCmd(), newStatusCmd(), newRotationCmd(), newSweepCmd())
	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("workforcectl: %s", err)
	}
}
