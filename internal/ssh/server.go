// Package ssh serves the terminal chat UI over SSH.
package ssh

import (
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	charmssh "github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	wishbubbletea "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"caregate/internal/pipeline"
	"caregate/internal/tui"
)

// Config holds configuration for the SSH server
type Config struct {
	ListenAddr         string
	HostKeyPath        string
	AuthorizedKeysPath string

	Orchestrator *pipeline.Orchestrator

	// IndexSize reports the current chunk count for the status bar.
	IndexSize func() int
}

// NewServer creates a Wish SSH server that serves the TUI against the
// in-process orchestrator.
func NewServer(cfg Config) (*charmssh.Server, error) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":2222"
	}
	if cfg.HostKeyPath == "" {
		cfg.HostKeyPath = "ssh_host_key"
	}

	authorizedKeys, err := LoadAuthorizedKeys(cfg.AuthorizedKeysPath)
	if err != nil {
		log.Printf("[SSH] No authorized keys loaded: %v", err)
		authorizedKeys = nil
	} else {
		log.Printf("[SSH] Loaded %d authorized keys", len(authorizedKeys))
	}

	handler := func(sess charmssh.Session) (tea.Model, []tea.ProgramOption) {
		return bubbleTeaHandler(sess, cfg)
	}

	opts := []charmssh.Option{
		wish.WithAddress(cfg.ListenAddr),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithMiddleware(
			wishbubbletea.Middleware(handler),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	}

	if len(authorizedKeys) > 0 {
		opts = append(opts, wish.WithPublicKeyAuth(func(ctx charmssh.Context, key charmssh.PublicKey) bool {
			return publicKeyHandler(ctx, key, authorizedKeys)
		}))
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH server: %w", err)
	}
	return server, nil
}

// bubbleTeaHandler creates a TUI model for each SSH session
func bubbleTeaHandler(sess charmssh.Session, cfg Config) (tea.Model, []tea.ProgramOption) {
	// Renderer bound to the SSH session so styles emit correct ANSI
	// escape sequences for the connecting terminal.
	renderer := wishbubbletea.MakeRenderer(sess)

	indexSize := 0
	if cfg.IndexSize != nil {
		indexSize = cfg.IndexSize()
	}

	model := tui.NewModel(tui.ModelConfig{
		Orchestrator: cfg.Orchestrator,
		Styles:       tui.NewStyles(renderer),
		IndexSize:    indexSize,
	})

	log.Printf("[SSH] Session started for user: %s", sess.User())
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// publicKeyHandler validates SSH public keys against the authorized keys list
func publicKeyHandler(ctx charmssh.Context, key charmssh.PublicKey, authorizedKeys []charmssh.PublicKey) bool {
	for _, authKey := range authorizedKeys {
		if charmssh.KeysEqual(key, authKey) {
			log.Printf("[SSH] Public key accepted for user: %s", ctx.User())
			return true
		}
	}
	log.Printf("[SSH] Public key rejected for user: %s", ctx.User())
	return false
}
