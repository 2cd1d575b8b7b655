package main

import (
	"context"

	"github.com/aretw0/accelerate/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP control server",
	Long:  `Exposes the engine as a JSON API over HTTP, with an event stream and optional Prometheus metrics.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("listen") {
			app.Config.Listen, _ = cmd.Flags().GetString("listen")
		}
		if cmd.Flags().Changed("metrics") {
			app.Config.Metrics, _ = cmd.Flags().GetBool("metrics")
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return app.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", ":8080", "Address to listen on")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
}
