package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

func newTestWebhook(t *testing.T, handler http.HandlerFunc) *Webhook {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	w := NewWebhookWithHTTPClient(server.Client(), server.URL+"/api/webhooks/1/token")
	w.limiter = rate.NewLimiter(rate.Inf, 1)
	return w
}

func TestWebhook_Notify(t *testing.T) {
	var got webhookPayload
	var gotContentType, gotPath string

	w := newTestWebhook(t, func(rw http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		rw.WriteHeader(http.StatusNoContent)
	})

	err := w.Notify(context.Background(), model.Message{
		Username:  "RU SnipeCord",
		AvatarURL: "https://example.com/a.png",
		Content:   "hello",
	})

	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "/api/webhooks/1/token", gotPath)
	assert.Equal(t, webhookPayload{Username: "RU SnipeCord", AvatarURL: "https://example.com/a.png", Content: "hello"}, got)
	assert.Equal(t, "discord", w.Name())
}

func TestWebhook_Notify_ErrorStatus(t *testing.T) {
	w := newTestWebhook(t, func(rw http.ResponseWriter, _ *http.Request) {
		http.Error(rw, `{"message": "Unknown Webhook"}`, http.StatusNotFound)
	})

	err := w.Notify(context.Background(), model.Message{Content: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "Unknown Webhook")
}

func TestWebhook_Notify_RateLimited(t *testing.T) {
	w := newTestWebhook(t, func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Retry-After", "2")
		rw.WriteHeader(http.StatusTooManyRequests)
	})

	err := w.Notify(context.Background(), model.Message{Content: "x"})

	require.ErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, err.Error(), "retry after 2")
}

func TestWebhook_Notify_CanceledWhileWaiting(t *testing.T) {
	w := newTestWebhook(t, func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusNoContent)
	})
	w.limiter = rate.NewLimiter(rate.Every(1<<62), 1)
	require.NoError(t, w.Notify(context.Background(), model.Message{Content: "first"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Notify(ctx, model.Message{Content: "second"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "wait for send slot")
}

func TestWebhook_Notify_TruncatesLongContent(t *testing.T) {
	var got webhookPayload
	w := newTestWebhook(t, func(rw http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		rw.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, w.Notify(context.Background(), model.Message{Content: strings.Repeat("é", 2500)}))

	assert.Equal(t, maxContentRunes, len([]rune(got.Content)))
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://discord.com/api/webhooks/1/***", RedactURL("https://discord.com/api/webhooks/1/secret"))
	assert.Equal(t, "nothing", RedactURL("nothing"))
}
