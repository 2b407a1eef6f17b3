package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"caregate/internal/channels"
	"caregate/internal/channels/telegram"
	"caregate/internal/config"
	"caregate/internal/gateway"
	"caregate/internal/scheduler"
	internalssh "caregate/internal/ssh"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Caregate HTTP server",
	Long: `Start the Caregate server. On startup the document corpus is loaded
from the snapshot or the data directory, then queries are served over
HTTP, WebSocket, and any enabled channels.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	server := gateway.NewServer(cfg, orch, index, snapshots)

	// Periodic data-dir rescan
	var rescanner *scheduler.Rescanner
	if cfg.Rescan.Enabled {
		rescanner = scheduler.NewRescanner(cfg.DataDir, index)
		if err := rescanner.Start(cfg.Rescan.Schedule); err != nil {
			log.Printf("[Main] Rescanner disabled: %v", err)
			rescanner = nil
		}
	}
	if rescanner != nil {
		server.SetRescanStatus(rescanner.Status)
	}

	// SSH-served terminal chat
	if cfg.SSH.Enabled {
		sshServer, err := internalssh.NewServer(internalssh.Config{
			ListenAddr:         cfg.SSH.ListenAddr,
			HostKeyPath:        cfg.SSH.HostKeyPath,
			AuthorizedKeysPath: cfg.SSH.AuthorizedKeysPath,
			Orchestrator:       orch,
			IndexSize:          index.Count,
		})
		if err != nil {
			log.Printf("[Main] SSH server disabled: %v", err)
		} else {
			go func() {
				log.Printf("[Main] SSH server listening on %s", cfg.SSH.ListenAddr)
				if err := sshServer.ListenAndServe(); err != nil {
					select {
					case <-ctx.Done():
					default:
						log.Printf("[Main] SSH server error: %v", err)
					}
				}
			}()
			defer sshServer.Close()
		}
	}

	// External messaging channels
	manager := channels.NewManager()
	for _, ch := range cfg.Channels {
		if !ch.Enabled {
			continue
		}
		switch ch.Type {
		case "telegram":
			if err := manager.Register(telegram.New(ch.Name, ch.Config["bot_token"], orch)); err != nil {
				log.Printf("[Main] Channel %s not registered: %v", ch.Name, err)
			}
		default:
			log.Printf("[Main] Unknown channel type %q, skipping %s", ch.Type, ch.Name)
		}
	}
	manager.StartAll(ctx)
	defer manager.StopAll()

	// Graceful shutdown on SIGINT/SIGTERM
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("[Main] Received %v, shutting down", sig)
	}

	cancel()
	if rescanner != nil {
		rescanner.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] HTTP shutdown error: %v", err)
	}

	if snapshots != nil {
		if err := index.Snapshot(shutdownCtx, snapshots); err != nil {
			log.Printf("[Main] Final snapshot failed: %v", err)
		}
	}

	log.Printf("[Main] Shutdown complete")
	return nil
}
