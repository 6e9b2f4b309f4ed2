package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/datamodel/internal/cli"
	"github.com/aretw0/datamodel/pkg/tabular"
	"github.com/spf13/cobra"
)

var infuseCmd = &cobra.Command{
	Use:   "infuse <file|->",
	Short: "Fill records from a delimited table",
	Long: `Reads a table whose first column names records of --model and feeds the other
columns to --fields in order. When a row has one cell more than there are fields, the
last field receives the last two cells as a pair (for example year and value).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, _, logger, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		var data []byte
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}

		opts := cli.InfuseOptions{}
		opts.Model, _ = cmd.Flags().GetString("model")
		opts.Fields, _ = cmd.Flags().GetStringSlice("fields")
		opts.RowSep, _ = cmd.Flags().GetString("row-sep")
		opts.ColSep, _ = cmd.Flags().GetString("col-sep")
		opts.Save, _ = cmd.Flags().GetBool("save")

		res, plan, err := cli.Infuse(cmd.Context(), env.Workspace, string(data), opts, logger)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d values accepted, %d rejected, %d records changed\n", res.Accepted, res.Rejected, len(res.Changed))
		if unknown := plan.Unknown(); len(unknown) > 0 {
			fmt.Fprintf(out, "no record for: %s\n", strings.Join(unknown, ", "))
		}
		if len(plan.Missing) > 0 {
			names := make([]string, len(plan.Missing))
			for i, rc := range plan.Missing {
				names[i] = rc.Name
			}
			fmt.Fprintf(out, "not in table: %s\n", strings.Join(names, ", "))
		}
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Write record fields as a delimited table",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, _, _, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		model, _ := cmd.Flags().GetString("model")
		fields, _ := cmd.Flags().GetStringSlice("fields")
		colSep, _ := cmd.Flags().GetString("col-sep")
		return cli.Extract(cmd.OutOrStdout(), env.Workspace, model, fields, colSep)
	},
}

func init() {
	rootCmd.AddCommand(infuseCmd, extractCmd)

	infuseCmd.Flags().String("model", "", "Schema of the records to fill")
	infuseCmd.Flags().StringSlice("fields", nil, "Fields fed by the columns after the name; '-' skips a column")
	infuseCmd.Flags().String("row-sep", tabular.DefaultRowSep, "Row separator (escapes like \\n allowed)")
	infuseCmd.Flags().String("col-sep", tabular.DefaultColSep, "Column separator (escapes like \\t allowed)")
	infuseCmd.Flags().Bool("save", false, "Write changed records back to the store")
	_ = infuseCmd.MarkFlagRequired("model")
	_ = infuseCmd.MarkFlagRequired("fields")

	extractCmd.Flags().String("model", "", "Only records of this schema")
	extractCmd.Flags().StringSlice("fields", nil, "Fields to write after the name")
	extractCmd.Flags().String("col-sep", tabular.DefaultColSep, "Column separator (escapes like \\t allowed)")
	_ = extractCmd.MarkFlagRequired("fields")
}
