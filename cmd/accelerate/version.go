package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/accelerate"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of accelerate",
	// Skip config resolution: version must work anywhere.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "accelerate version %s\n", strings.TrimSpace(accelerate.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
