package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Rrens/crewchat/internal/config"
	"github.com/Rrens/crewchat/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "chatctl",
	Short: "Terminal client for crewchat",
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Only warnings reach the terminal while chatting
	cfg.Logging.Level = "warn"
	if err := logging.Setup(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	var apiURL string
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", cfg.Client.APIURL, "crewchat server URL")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cfg.Client.APIURL = apiURL
	}

	rootCmd.AddCommand(
		newChatsCmd(cfg),
		newNewCmd(cfg),
		newRmCmd(cfg),
		newSendCmd(cfg),
		newOpenCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
