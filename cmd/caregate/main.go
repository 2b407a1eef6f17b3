package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"caregate/internal/version"
)

var (
	cfgFile string
	verbose bool
	port    int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "caregate",
	Short: "Caregate - evidence-based health question answering",
	Long: `Caregate is a retrieval-augmented service for health questions.
Incoming queries are risk-checked, routed, answered from an indexed
document corpus, and returned with evidence and a confidence level.

It can run as an HTTP server or as an interactive terminal chat.`,
	Version: version.Full(),
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Caregate %s\n", version.Full())
		if version.GitCommit != "unknown" {
			fmt.Printf("Git commit: %s\n", version.GitCommit)
		}
		fmt.Printf("Go version: %s\n", version.GoVersion)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	serverCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (overrides config)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sshKeysCmd)
	rootCmd.AddCommand(versionCmd)

	// If no command is specified, default to server
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serverCmd.RunE(cmd, args)
	}
}

func main() {
	log.SetFlags(log.LstdFlags)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
