package main

import (
	"context"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "lists all motions in the directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.List(context.Background())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "prints how many motions are applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Status(context.Background())
	},
}

var showCmd = &cobra.Command{
	Use:   "show <index|name>",
	Short: "renders both halves of a motion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Show(context.Background(), args[0])
	},
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "create a new motion using the template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Create(args[0])
	},
}

func init() {
	rootCmd.AddCommand(lsCmd, statusCmd, showCmd, createCmd)
}
