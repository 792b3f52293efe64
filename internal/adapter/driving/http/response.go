package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/snipecord/internal/application"
	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// WatchesResponse is the JSON representation of a watch table snapshot.
type WatchesResponse struct {
	Semester        string          `json:"semester"`
	Campus          string          `json:"campus"`
	Level           string          `json:"level"`
	IntervalSeconds float64         `json:"interval_seconds"`
	Stats           StatsResponse   `json:"stats"`
	Watches         []WatchResponse `json:"watches"`
	TakenAt         string          `json:"taken_at"`
}

// StatsResponse is the JSON representation of the poll loop counters.
type StatsResponse struct {
	Ticks          int64  `json:"ticks"`
	FailedTicks    int64  `json:"failed_ticks"`
	AlertsFired    int64  `json:"alerts_fired"`
	LastPollAt     string `json:"last_poll_at,omitempty"`
	LastPollFailed bool   `json:"last_poll_failed"`
}

// WatchResponse is the JSON representation of one watched index.
type WatchResponse struct {
	Index             string `json:"index"`
	Label             string `json:"label"`
	CooldownRemaining uint32 `json:"cooldown_remaining"`
	Eligible          bool   `json:"eligible"`
	LastFiredAt       string `json:"last_fired_at,omitempty"`
	RegistrationURL   string `json:"registration_url"`
}

// NotificationResponse is the JSON representation of a history record.
type NotificationResponse struct {
	ID        int64  `json:"id"`
	Index     string `json:"index"`
	Label     string `json:"label"`
	Content   string `json:"content"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
	SentAt    string `json:"sent_at"`
}

func toWatchesResponse(snap model.WatchSnapshot, q model.Query, interval time.Duration) WatchesResponse {
	watches := make([]WatchResponse, 0, len(snap.Watches))
	for _, ws := range snap.Watches {
		watches = append(watches, WatchResponse{
			Index:             ws.Index,
			Label:             ws.Label,
			CooldownRemaining: ws.CooldownRemaining,
			Eligible:          ws.CooldownRemaining == 0,
			LastFiredAt:       formatTime(ws.LastFiredAt),
			RegistrationURL:   application.RegistrationURL(q, ws.Index),
		})
	}

	return WatchesResponse{
		Semester:        q.Semester(),
		Campus:          q.Campus,
		Level:           q.Level,
		IntervalSeconds: interval.Seconds(),
		Stats: StatsResponse{
			Ticks:          snap.Stats.Ticks,
			FailedTicks:    snap.Stats.FailedTicks,
			AlertsFired:    snap.Stats.AlertsFired,
			LastPollAt:     formatTime(snap.Stats.LastPollAt),
			LastPollFailed: snap.Stats.LastPollFailed,
		},
		Watches: watches,
		TakenAt: formatTime(snap.TakenAt),
	}
}

func toNotificationResponse(rec model.NotificationRecord) NotificationResponse {
	return NotificationResponse{
		ID:        rec.ID,
		Index:     rec.Index,
		Label:     rec.Label,
		Content:   rec.Content,
		Delivered: rec.Delivered,
		Error:     rec.Error,
		SentAt:    formatTime(rec.SentAt),
	}
}

// formatTime renders t as RFC 3339 in UTC, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
