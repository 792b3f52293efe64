// Package telegram implements the Notifier port with a Telegram bot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Sender)(nil)

// Sender delivers messages to one Telegram chat. It never polls for updates.
type Sender struct {
	bot  *tele.Bot
	chat *tele.Chat
}

// Options configures a Sender.
type Options struct {
	Token  string
	ChatID int64
	// APIURL overrides the Bot API endpoint; empty means api.telegram.org.
	APIURL string
	Client *http.Client
}

// New creates a Sender. The bot is created offline so no getMe call is made.
func New(opts Options) (*Sender, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if opts.ChatID == 0 {
		return nil, errors.New("telegram chat id is empty")
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	b, err := tele.NewBot(tele.Settings{
		Token:   opts.Token,
		URL:     opts.APIURL,
		Client:  client,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Sender{bot: b, chat: &tele.Chat{ID: opts.ChatID}}, nil
}

// Name implements driven.Notifier.
func (s *Sender) Name() string { return "telegram" }

// Notify implements driven.Notifier. The bot API client has no context
// support, so cancellation is only checked before sending.
func (s *Sender) Notify(ctx context.Context, msg model.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return errors.New("telegram message is empty")
	}
	if _, err := s.bot.Send(s.chat, text, &tele.SendOptions{DisableWebPagePreview: true}); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
