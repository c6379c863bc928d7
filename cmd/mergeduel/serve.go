package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/merge-duel/internal/config"
	"github.com/vovakirdan/merge-duel/internal/effect"
	"github.com/vovakirdan/merge-duel/internal/platform/tui"
	"github.com/vovakirdan/merge-duel/internal/room"
	"github.com/vovakirdan/merge-duel/internal/storage"
	"github.com/vovakirdan/merge-duel/internal/transport/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH and WebSocket servers",
	Long: `Start the authoritative game server. Players connect either over
SSH for the terminal client or over WebSocket for browser clients;
both front ends share one coordinator, so an SSH player can be
matched against a WebSocket player.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.mergeduel/host_key

Examples:
  mergeduel serve                          # Defaults (:23235 SSH, :4000 WS)
  mergeduel serve --ssh :2222 --ws :8080
  mergeduel serve --config ./server.yaml

Terminal players connect with:
  ssh anything@localhost -p 23235`,
	Run: runServe,
}

var (
	flagSSHAddr string
	flagWSAddr  string
	flagHostKey string
	flagDBPath  string
)

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (overrides config)")
	serveCmd.Flags().StringVar(&flagWSAddr, "ws", "", "WebSocket address (overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key file")
	serveCmd.Flags().StringVar(&flagDBPath, "db", "", "Path to match results database (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if flagSSHAddr != "" {
		cfg.SSH.Address = flagSSHAddr
	}
	if flagWSAddr != "" {
		cfg.WS.Address = flagWSAddr
	}
	if flagHostKey != "" {
		cfg.SSH.HostKeyPath = flagHostKey
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "duel",
	})

	// Match result persistence is best effort; the server plays fine
	// without it.
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open match database", "error", err)
		store = nil
	}

	sessions := room.NewSessionRegistry()

	roomCfg := room.DefaultConfig()
	if cfg.Game.ReconnectGraceSecs > 0 {
		roomCfg.ReconnectGrace = time.Duration(cfg.Game.ReconnectGraceSecs) * time.Second
	}
	if cfg.Game.Effects.XAt > 0 {
		roomCfg.Thresholds = effect.Thresholds{
			XAt:    cfg.Game.Effects.XAt,
			HardAt: cfg.Game.Effects.HardAt,
		}
	}

	coordinator := room.NewCoordinator(roomCfg, sessions, logger)
	if store != nil {
		coordinator.SetResultSaver(store)
	}
	coordinator.Start()
	defer coordinator.Stop()

	gateway := ws.NewGateway(cfg.WS.Address, coordinator, sessions)
	go func() {
		if gwErr := gateway.ListenAndServe(); gwErr != nil {
			logger.Error("websocket gateway error", "error", gwErr)
		}
	}()

	sshCfg := tui.SSHServerConfig{
		Address:     cfg.SSH.Address,
		HostKeyPath: cfg.SSH.HostKeyPath,
		IdleTimeout: time.Duration(cfg.SSH.IdleTimeoutMin) * time.Minute,
	}
	server, err := tui.NewSSHServer(sshCfg, coordinator, sessions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SSH server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("SSH server on %s, WebSocket gateway on %s\n", cfg.SSH.Address, cfg.WS.Address)
	fmt.Println("Press Ctrl+C to stop")

	err = server.ListenAndServe()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = gateway.Shutdown(shutdownCtx)
	if store != nil {
		store.Close()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
