package main

import (
	"fmt"

	"github.com/aretw0/debot"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of debot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("debot version %s\n", debot.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
