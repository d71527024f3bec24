package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-ruleschema"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ruleschema",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ruleschema version %s\n", ruleschema.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
