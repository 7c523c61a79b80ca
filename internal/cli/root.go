// Package cli implements the pollwatch command-line interface for querying
// indexed poll data and seeding synthetic account updates.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainsift/pollwatch/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pollwatch",
	Short: "Voting program indexer CLI",
	Long: `pollwatch is the command-line interface for the voting program indexer.

Query indexed poll data and publish synthetic account updates for local
testing. The listener daemon itself runs as pollwatchd.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg, _ = config.Load("")
	}
}
