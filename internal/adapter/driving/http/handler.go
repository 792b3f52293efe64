package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driven"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driving"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 500
	snapshotTimeout          = 2 * time.Second
)

// Handler is the HTTP driving adapter that serves the status API.
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

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with logging and recovery middleware. Extra routes, such as the
// HTML status page, are registered through extra.
func NewServeMux(h *Handler, logger *slog.Logger, extra ...func(*http.ServeMux)) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/watches", h.ListWatches)
	mux.HandleFunc("GET /api/v1/notifications", h.ListNotifications)

	for _, register := range extra {
		register(mux)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = accessLogMiddleware(logger, wrapped)

	return wrapped
}

// Health reports that the process is serving requests.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListWatches returns the suppression table and poll counters.
func (h *Handler) ListWatches(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), snapshotTimeout)
	defer cancel()

	snap, err := h.watches.Snapshot(ctx)
	if err != nil {
		h.logger.Warn("watch snapshot unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "poll loop busy, try again")
		return
	}

	writeJSON(w, http.StatusOK, toWatchesResponse(snap, h.query, h.watches.Interval()))
}

// ListNotifications returns the most recent notification history records,
// optionally filtered by ?index=. The list is empty when history is disabled.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxNotificationLimit)
	}

	if h.history == nil {
		writeJSON(w, http.StatusOK, []NotificationResponse{})
		return
	}

	var (
		records []model.NotificationRecord
		err     error
	)
	if index := r.URL.Query().Get("index"); index != "" {
		records, err = h.history.ListByIndex(r.Context(), index, limit)
	} else {
		records, err = h.history.ListRecent(r.Context(), limit)
	}
	if err != nil {
		h.logger.Error("failed to list notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]NotificationResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toNotificationResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}
