// Package web serves the HTML status page.
package web

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driven"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driving"
)

const (
	historyRows     = 20
	snapshotTimeout = 2 * time.Second
	refreshSeconds  = 10
)

var statusTemplate = template.Must(template.ParseFS(templateFS, "templates/status.html"))

// pageData is the view passed to the status template.
type pageData struct {
	Title          string
	RefreshSeconds int
	Body           template.HTML
	GeneratedAt    string
}

// Handler is the web driving adapter that renders the status page.
type Handler struct {
	watches driving.WatchReader
	history driven.NotificationStore // nil when history is disabled
	query   model.Query
	logger  *slog.Logger
}

// NewHandler creates a Handler. history may be nil.
func NewHandler(
	watches driving.WatchReader,
	history driven.NotificationStore,
	query model.Query,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		watches: watches,
		history: history,
		query:   query,
		logger:  logger,
	}
}

// Status renders the watch table and recent notification history.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), snapshotTimeout)
	defer cancel()

	snap, err := h.watches.Snapshot(ctx)
	if err != nil {
		h.logger.Warn("watch snapshot unavailable", "error", err)
		h.render(w, http.StatusServiceUnavailable, "# SnipeCord\n\n_Poll loop busy, this page will retry._\n")
		return
	}

	var records []model.NotificationRecord
	if h.history != nil {
		records, err = h.history.ListRecent(r.Context(), historyRows)
		if err != nil {
			h.logger.Error("failed to list notifications", "error", err)
			records = []model.NotificationRecord{}
		}
	}

	h.render(w, http.StatusOK, statusMarkdown(snap, records, h.query, h.watches.Interval()))
}

func (h *Handler) render(w http.ResponseWriter, status int, markdown string) {
	data := pageData{
		Title:          "SnipeCord " + h.query.Semester(),
		RefreshSeconds: refreshSeconds,
		Body:           template.HTML(RenderMarkdown(markdown)), //nolint:gosec // sanitized by bluemonday.
		GeneratedAt:    time.Now().UTC().Format(timeLayout),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := statusTemplate.Execute(w, data); err != nil {
		h.logger.Error("failed to render status page", "error", err)
	}
}
