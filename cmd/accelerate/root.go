package main

import (
	"os"

	"github.com/aretw0/accelerate/internal/cli"
	"github.com/aretw0/accelerate/internal/config"
	"github.com/spf13/cobra"
)

// app is resolved once flags are parsed.
var app *cli.App

var rootCmd = &cobra.Command{
	Use:   "accelerate",
	Short: "Accelerate back and forth through time for your database or other in-place systems",
	Long: `Accelerate applies an ordered catalog of reversible motions to a target and records
how many are applied, so it can move forward, backward or to any point in between.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !cli.IsReported(err) {
			cli.NewPrinter(os.Stderr).Failure("%v", err)
		}
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	cfg, err := config.Load(config.Source{File: configFile, EnvFile: envFile})
	if err != nil {
		return err
	}

	// Flags win over every other source, but only when given.
	if flags.Changed("target") {
		cfg.Target, _ = flags.GetString("target")
	}
	if flags.Changed("directory") {
		cfg.Directory, _ = flags.GetString("directory")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err = cli.NewApp(cfg, cli.NewPrinter(cmd.OutOrStdout()))
	return err
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("target", "t", "", "the targeted url to accelerate (e.g. sqlite://app.db)")
	rootCmd.PersistentFlags().StringP("directory", "d", ".", "the directory holding the motions")
	rootCmd.PersistentFlags().String("config", "", "config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file (default ./"+config.DefaultEnvFile+" if present)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn or error")
}
