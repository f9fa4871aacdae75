package main

import (
	"context"
	"os"

	"github.com/aretw0/debot/internal/cli"
	"github.com/spf13/cobra"
)

func inspectOptions(cmd *cobra.Command, args []string) cli.InspectOptions {
	opts := cli.InspectOptions{Store: storeOptions(cmd)}
	flags := cmd.Flags()
	opts.Fixture, _ = flags.GetString("fixture")
	if !flags.Changed("fixture") && len(args) > 0 {
		opts.Fixture = args[0]
	}
	opts.Addr, _ = flags.GetString("addr")
	opts.ABIPath, _ = flags.GetString("abi")
	return opts
}

var graphCmd = &cobra.Command{
	Use:   "graph [fixture]",
	Short: "Print the debot context graph as a Mermaid flowchart",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := inspectOptions(cmd, args)
		opts.SessionID, _ = cmd.Flags().GetString("session")
		return cli.PrintGraph(cmd.Context(), os.Stdout, opts)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [fixture]",
	Short: "Check the debot context graph for broken links",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(cmd.Context(), os.Stdout, inspectOptions(cmd, args))
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve [fixture]",
	Short: "Serve stored sessions and the debot graph over HTTP",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		opts := cli.ServeOptions{Inspect: inspectOptions(cmd, args)}
		opts.Listen, _ = cmd.Flags().GetString("listen")
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")
		opts.LogFormat, _ = cmd.Flags().GetString("log-format")
		return cli.Serve(sigCtx, os.Stdout, opts)
	},
}

func init() {
	for _, c := range []*cobra.Command{graphCmd, validateCmd, serveCmd} {
		c.Flags().StringP("fixture", "f", "debot.yaml", "YAML fixture describing the debots and accounts")
		c.Flags().String("addr", "", "Debot address (defaults to the fixture entry)")
		c.Flags().String("abi", "", "JSON file overriding the debot ABI")
		rootCmd.AddCommand(c)
	}
	graphCmd.Flags().String("session", "", "Highlight the position of a stored session")
	serveCmd.Flags().String("listen", "127.0.0.1:8680", "Address to listen on")
}
