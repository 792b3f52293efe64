// Package discord implements the Notifier port with a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Webhook)(nil)

// ErrRateLimited is returned when Discord answers 429 Too Many Requests.
var ErrRateLimited = errors.New("discord rate limited")

const (
	defaultTimeout = 10 * time.Second
	// Discord rejects message content longer than this many characters.
	maxContentRunes = 2000
)

// webhookPayload is the JSON body of an execute-webhook request.
type webhookPayload struct {
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Content   string `json:"content"`
}

// Webhook posts messages to a single Discord webhook URL.
type Webhook struct {
	httpClient *http.Client
	url        string
	limiter    *rate.Limiter
}

// NewWebhook creates a Webhook for url. Sends are paced to stay under
// Discord's per-webhook limit of five requests every two seconds.
func NewWebhook(url string) *Webhook {
	return NewWebhookWithHTTPClient(&http.Client{Timeout: defaultTimeout}, url)
}

// NewWebhookWithHTTPClient creates a Webhook with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewWebhookWithHTTPClient(httpClient *http.Client, url string) *Webhook {
	return &Webhook{
		httpClient: httpClient,
		url:        url,
		limiter:    rate.NewLimiter(rate.Every(400*time.Millisecond), 5),
	}
}

// Name implements driven.Notifier.
func (w *Webhook) Name() string { return "discord" }

// Notify implements driven.Notifier.
func (w *Webhook) Notify(ctx context.Context, msg model.Message) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for send slot: %w", err)
	}

	data, err := json.Marshal(webhookPayload{
		Username:  msg.Username,
		AvatarURL: msg.AvatarURL,
		Content:   truncate(msg.Content, maxContentRunes),
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w (retry after %s)", ErrRateLimited, resp.Header.Get("Retry-After"))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// RedactURL hides the webhook token (the last path segment) for logging.
func RedactURL(raw string) string {
	i := strings.LastIndex(raw, "/")
	if i < 0 || i == len(raw)-1 {
		return raw
	}
	return raw[:i+1] + "***"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
