package main

import (
	"fmt"

	"github.com/aretw0/datamodel/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check schemas and records for consistency",
	Long:  `Loads every document and reports decoding failures and references to missing records.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, _, _, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		issues := cli.Validate(env.Workspace, env.LoadErr)
		out := cmd.OutOrStdout()
		for _, issue := range issues {
			fmt.Fprintln(out, issue)
		}
		if len(issues) > 0 {
			return fmt.Errorf("%w: %d issues", cli.ErrInvalid, len(issues))
		}
		fmt.Fprintf(out, "%d schemas and %d records are valid\n", len(env.Workspace.Schemas()), len(env.Workspace.Records()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
