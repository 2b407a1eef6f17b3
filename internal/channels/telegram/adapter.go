// Package telegram bridges the query pipeline to a Telegram bot.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"caregate/internal/channels"
	"caregate/internal/pipeline"
)

// botAPI abstracts the Telegram bot methods used by the adapter,
// enabling testing with mocks.
type botAPI interface {
	Start(ctx context.Context)
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

// Adapter implements channels.Adapter for Telegram.
type Adapter struct {
	name         string
	token        string
	orchestrator *pipeline.Orchestrator

	bot       botAPI
	cancel    context.CancelFunc
	mu        sync.RWMutex
	status    channels.StatusCode
	statusMsg string
	msgCount  int64
}

// New creates a Telegram adapter. The bot connection is established on
// Start.
func New(name, token string, orch *pipeline.Orchestrator) *Adapter {
	return &Adapter{
		name:         name,
		token:        token,
		orchestrator: orch,
		status:       channels.StatusInitializing,
	}
}

// Name returns the adapter's configured name.
func (a *Adapter) Name() string { return a.name }

// Type returns "telegram".
func (a *Adapter) Type() string { return "telegram" }

// Start connects the bot and begins long polling in the background.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token == "" {
		a.status = channels.StatusError
		a.statusMsg = "bot_token missing"
		return fmt.Errorf("telegram: bot_token is required")
	}

	if a.bot == nil {
		b, err := bot.New(a.token, bot.WithDefaultHandler(a.handleUpdate))
		if err != nil {
			a.status = channels.StatusError
			a.statusMsg = err.Error()
			return fmt.Errorf("telegram: create bot: %w", err)
		}
		a.bot = b
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	go a.bot.Start(runCtx)

	a.status = channels.StatusOnline
	a.statusMsg = "long polling"
	log.Printf("[Telegram] Adapter %s started", a.name)
	return nil
}

// Stop halts long polling.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.status = channels.StatusOffline
	a.statusMsg = "stopped"
	log.Printf("[Telegram] Adapter %s stopped", a.name)
	return nil
}

// Status returns the current adapter status.
func (a *Adapter) Status() channels.Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return channels.Status{
		Status:    a.status,
		Message:   a.statusMsg,
		Timestamp: time.Now(),
	}
}

// IsHealthy reports whether the adapter is online.
func (a *Adapter) IsHealthy() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status == channels.StatusOnline
}

// handleUpdate processes one incoming Telegram update.
func (a *Adapter) handleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	a.processMessage(ctx, update.Message)
}

// processMessage runs the pipeline for a message and replies in-chat.
func (a *Adapter) processMessage(ctx context.Context, msg *models.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return
	}

	a.mu.Lock()
	a.msgCount++
	a.mu.Unlock()

	a.bot.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: msg.Chat.ID,
		Action: models.ChatActionTyping,
	})

	resp := a.orchestrator.HandleQuery(ctx, text)

	if _, err := a.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   FormatResponse(resp),
	}); err != nil {
		log.Printf("[Telegram] Failed to send reply: %v", err)
	}
}

// FormatResponse renders a pipeline response as a plain-text Telegram
// message.
func FormatResponse(resp pipeline.QueryResponse) string {
	var b strings.Builder

	b.WriteString(resp.Answer)

	if !resp.IsSafe {
		if resp.RefusalReason != "" {
			b.WriteString("\n\n" + resp.RefusalReason)
		}
	} else if resp.Explanation != "" {
		b.WriteString("\n\n" + resp.Explanation)
	}

	if len(resp.Evidence) > 0 {
		seen := make(map[string]bool)
		var sources []string
		for _, e := range resp.Evidence {
			if !seen[e.Source] {
				seen[e.Source] = true
				sources = append(sources, e.Source)
			}
		}
		b.WriteString("\n\nSources: " + strings.Join(sources, ", "))
	}

	b.WriteString(fmt.Sprintf("\n\nConfidence: %s", resp.Confidence))
	if resp.Disclaimer != "" {
		b.WriteString("\n" + resp.Disclaimer)
	}
	return b.String()
}
