package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCmdVersion returns a command that prints the application version.
func newCmdVersion() *cobra.Command {
	var long bool
	c := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			// Keep output minimal and script-friendly
			if long {
				fmt.Fprintf(cmd.OutOrStdout(), "grafanaops version %s (commit %s, built %s)\n", version, commit, date)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "grafanaops version %s\n", version)
		},
	}
	c.Flags().BoolVarP(&long, "long", "l", false, "Include commit and build date")
	return c
}
