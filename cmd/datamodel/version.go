package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/datamodel"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of datamodel",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "datamodel version %s\n", strings.TrimSpace(datamodel.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
