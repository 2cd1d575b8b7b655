package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/accelerate"
	"github.com/aretw0/accelerate/internal/cli"
	"github.com/spf13/cobra"
)

// runOp runs op under a context cancelled by SIGINT/SIGTERM.
func runOp(name string, op cli.Operation) error {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()
	return app.Run(ctx, name, op)
}

// countArg parses the optional [n] argument, defaulting to 1.
func countArg(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count %q: expected a non-negative integer", args[0])
	}
	return n, nil
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "adds all remaining motions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp("up", func(ctx context.Context, e *accelerate.Engine) error { return e.Up(ctx) })
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "subtracts all previous motions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp("down", func(ctx context.Context, e *accelerate.Engine) error { return e.Down(ctx) })
	},
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "subtracts then adds the last motion",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp("redo", func(ctx context.Context, e *accelerate.Engine) error { return e.Redo(ctx) })
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "subtracts then adds all previous motions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp("reset", func(ctx context.Context, e *accelerate.Engine) error { return e.Reset(ctx) })
	},
}

var addCmd = &cobra.Command{
	Use:   "add [n]",
	Short: "adds n motions (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := countArg(args)
		if err != nil {
			return err
		}
		return runOp("add", func(ctx context.Context, e *accelerate.Engine) error { return e.Move(ctx, n) })
	},
}

var subCmd = &cobra.Command{
	Use:   "sub [n]",
	Short: "subtracts n motions (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := countArg(args)
		if err != nil {
			return err
		}
		return runOp("sub", func(ctx context.Context, e *accelerate.Engine) error { return e.Move(ctx, -n) })
	},
}

// positionArg parses a goto position. "none" stands for -1, which cobra would
// otherwise read as a shorthand flag unless it follows "--".
func positionArg(arg string) (int, error) {
	if strings.EqualFold(arg, "none") {
		return -1, nil
	}
	position, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q: expected an integer or \"none\"", arg)
	}
	return position, nil
}

var gotoCmd = &cobra.Command{
	Use:   "goto <position|none>",
	Short: "moves so the motion at position is the last applied",
	Long: `Moves so the motion at position is the last applied.
Use "none" (or "-- -1") to subtract every motion.`,
	Example: "  accelerate goto 2\n  accelerate goto none",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, err := positionArg(args[0])
		if err != nil {
			return err
		}
		return runOp("goto", func(ctx context.Context, e *accelerate.Engine) error { return e.Goto(ctx, position) })
	},
}

func init() {
	rootCmd.AddCommand(upCmd, downCmd, redoCmd, resetCmd, addCmd, subCmd, gotoCmd)
}
