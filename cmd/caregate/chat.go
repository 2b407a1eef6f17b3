package main

import (
	"context"

	"github.com/spf13/cobra"

	"caregate/internal/config"
	"caregate/internal/tui"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive terminal chat",
	Long: `Start a terminal chat session against the local corpus. The index is
loaded the same way the server loads it; no running server is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	index, snapshots, err := buildIndex(ctx, cfg)
	if err != nil {
		return err
	}
	if snapshots != nil {
		defer snapshots.Close()
	}

	orch, err := buildOrchestrator(cfg, index)
	if err != nil {
		return err
	}

	return tui.Run(orch, index.Count())
}
