package main

import (
	"github.com/aretw0/datamodel/internal/cli"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var paletteCmd = &cobra.Command{
	Use:   "palette <name:model>",
	Short: "Show the color palette of a record",
	Long: `Prints the dominant colors of a record's palette field as swatches. With --image the
file (PNG, JPEG or GIF) is stored in the palette's source field and extracted again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := cli.ParseRef(args[0])
		if err != nil {
			return err
		}
		env, _, _, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		opts := cli.PaletteOptions{Ref: ref}
		opts.Field, _ = cmd.Flags().GetString("field")
		opts.Image, _ = cmd.Flags().GetString("image")
		opts.Save, _ = cmd.Flags().GetBool("save")

		out := termenv.NewOutput(cmd.OutOrStdout())
		return cli.Palette(cmd.Context(), out, out.Profile, env.Workspace, opts)
	},
}

func init() {
	rootCmd.AddCommand(paletteCmd)
	paletteCmd.Flags().String("field", "", "Palette field (default: the first palette field)")
	paletteCmd.Flags().String("image", "", "Image file to extract the palette from")
	paletteCmd.Flags().Bool("save", false, "Write the record back to the store")
}
