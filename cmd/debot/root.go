package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// EnvEncryptionKey provides the default for --encryption-key.
const EnvEncryptionKey = "DEBOT_ENCRYPTION_KEY"

var rootCmd = &cobra.Command{
	Use:   "debot",
	Short: "debot runs interactive debot sessions",
	Long: `debot browses debots: contracts that describe an interactive dialogue as a
graph of contexts and actions. Sessions run against a fixture call service
described in YAML.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "off", "Diagnostic log level (off, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Diagnostic log format (text, json)")

	rootCmd.PersistentFlags().String("store-dir", "", "Directory for session checkpoints as JSON files (ignored with --redis-addr)")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for session checkpoints (disabled when empty)")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database")
	rootCmd.PersistentFlags().String("redis-prefix", "", "Key prefix for stored sessions (default \"debot:session:\")")
	rootCmd.PersistentFlags().Duration("redis-ttl", 0, "Expiry of stored sessions (0 keeps them)")
	rootCmd.PersistentFlags().String("encryption-key", os.Getenv(EnvEncryptionKey), "Hex AES-256 key sealing stored account state (env "+EnvEncryptionKey+")")
}
