package main

import (
	"fmt"

	"github.com/aretw0/datamodel/internal/cli"
	"github.com/spf13/cobra"
)

var propagateCmd = &cobra.Command{
	Use:   "propagate [name:model...]",
	Short: "Recompute derived fields",
	Long:  `Feeds every derived field the value of its source, for the given records or all of them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, _, _, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()
		ws := env.Workspace
		ctx := cmd.Context()

		changed := 0
		if len(args) == 0 {
			if changed, err = ws.PropagateAll(ctx); err != nil {
				return err
			}
		}
		for _, code := range args {
			ref, err := cli.ParseRef(code)
			if err != nil {
				return err
			}
			ok, err := ws.Propagate(ctx, ref)
			if err != nil {
				return err
			}
			if ok {
				changed++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d records changed\n", changed)

		if save, _ := cmd.Flags().GetBool("save"); save {
			return ws.SaveAll(ctx)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(propagateCmd)
	propagateCmd.Flags().Bool("save", false, "Write records back to the store")
}
