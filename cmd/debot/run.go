package main

import (
	"context"
	"os"

	"github.com/aretw0/debot/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [fixture]",
	Short: "Run an interactive debot session",
	Long: `Starts a session with the entry debot of the fixture (or --addr) and presents
its menus on the terminal until the debot exits or the user quits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{
			Store: storeOptions(cmd),
		}
		flags := cmd.Flags()
		opts.Fixture, _ = flags.GetString("fixture")
		if !flags.Changed("fixture") && len(args) > 0 {
			opts.Fixture = args[0]
		}
		opts.Addr, _ = flags.GetString("addr")
		opts.ABIPath, _ = flags.GetString("abi")
		opts.LogLevel, _ = flags.GetString("log-level")
		opts.LogFormat, _ = flags.GetString("log-format")
		opts.MaxInstantSwitches, _ = flags.GetInt("max-instant-switches")
		opts.Markdown, _ = flags.GetBool("markdown")
		opts.NoBanner, _ = flags.GetBool("no-banner")
		opts.SessionID, _ = flags.GetString("session")
		opts.Resume, _ = flags.GetString("resume")
		opts.Store.LockTTL, _ = flags.GetDuration("lock-ttl")
		opts.MetricsAddr, _ = flags.GetString("metrics-addr")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.RunSession(sigCtx, opts, cli.IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	},
}

func storeOptions(cmd *cobra.Command) cli.StoreOptions {
	var opts cli.StoreOptions
	flags := cmd.Flags()
	opts.Dir, _ = flags.GetString("store-dir")
	opts.Addr, _ = flags.GetString("redis-addr")
	opts.Password, _ = flags.GetString("redis-password")
	opts.DB, _ = flags.GetInt("redis-db")
	opts.Prefix, _ = flags.GetString("redis-prefix")
	opts.TTL, _ = flags.GetDuration("redis-ttl")
	opts.EncryptionKey, _ = flags.GetString("encryption-key")
	return opts
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("fixture", "f", "debot.yaml", "YAML fixture describing the debots and accounts")
	runCmd.Flags().String("addr", "", "Debot address (defaults to the fixture entry)")
	runCmd.Flags().String("abi", "", "JSON file overriding the debot ABI")
	runCmd.Flags().Int("max-instant-switches", cli.DefaultMaxInstantSwitches, "Consecutive instant transitions allowed (0 = unbounded)")
	runCmd.Flags().Bool("markdown", false, "Render debot text as markdown")
	runCmd.Flags().Bool("no-banner", false, "Do not print the banner")
	runCmd.Flags().String("session", "", "Session id (generated when empty)")
	runCmd.Flags().String("resume", "", "Resume the stored session with this id")
	runCmd.Flags().Duration("lock-ttl", 0, "Expiry of the session lock (default 30s)")
	runCmd.Flags().String("metrics-addr", "", "Serve /metrics and /healthz on this address")

	runCmd.MarkFlagsMutuallyExclusive("session", "resume")
}
