package main

import (
	"github.com/aretw0/datamodel/internal/cli"
	"github.com/aretw0/datamodel/internal/presentation/tui"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [name:model...]",
	Short: "Describe schemas and records",
	Long: `Prints schemas and records as markdown (rendered for terminals), a Mermaid
flowchart of field dependencies and references, or JSON documents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		refs := make([]domain.Ref, 0, len(args))
		for _, code := range args {
			ref, err := cli.ParseRef(code)
			if err != nil {
				return err
			}
			refs = append(refs, ref)
		}

		env, _, _, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		format, _ := cmd.Flags().GetString("format")
		return cli.Inspect(cmd.OutOrStdout(), env.Workspace, format, tui.NewRenderer(), refs...)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("format", "f", cli.FormatMarkdown, "Output format: markdown, mermaid or json")
}
