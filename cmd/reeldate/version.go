package main

import (
	"github.com/spf13/cobra"

	"github.com/heimdex/reeldate/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("reeldate version %s (commit %s, built %s)\n", version, config.GitCommit, config.BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
