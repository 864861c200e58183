package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the intake CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intake",
		Short: "TAT PRO campaign intake",
		Long: `Lead intake for TAT PRO fundraising campaigns.

"serve" runs the ingest and listing API. "wizard" walks through the intake
form in the terminal, prices the campaign, and records the submission.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewWizardCommand())

	return cmd
}
