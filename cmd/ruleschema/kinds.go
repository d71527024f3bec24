package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-ruleschema/pkg/metadata"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the built-in rule kinds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, kind := range metadata.Kinds() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), kind); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
