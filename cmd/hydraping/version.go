package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd prints the build version and exits 0.
func NewVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the hydraping version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}
