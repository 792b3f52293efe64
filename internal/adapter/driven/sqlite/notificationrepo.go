package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.NotificationStore = (*NotificationRepo)(nil)

// NotificationRepo is the SQLite implementation of the NotificationStore port interface.
type NotificationRepo struct {
	db *DB
}

// NewNotificationRepo creates a new NotificationRepo backed by the given DB.
func NewNotificationRepo(db *DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// sentAtLayout is fixed-width so that text ordering matches time ordering.
const sentAtLayout = "2006-01-02T15:04:05.000000000Z"

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Record appends rec to the history and returns its assigned ID.
// A zero SentAt is stored as the current time.
func (r *NotificationRepo) Record(ctx context.Context, rec model.NotificationRecord) (int64, error) {
	const query = `
		INSERT INTO notifications (section_idx, label, content, delivered, error, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	sentAt := rec.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	delivered := 0
	if rec.Delivered {
		delivered = 1
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		rec.Index, rec.Label, rec.Content, delivered, rec.Error,
		sentAt.UTC().Format(sentAtLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert notification for index %s: %w", rec.Index, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get notification id: %w", err)
	}
	return id, nil
}

// ListRecent returns up to limit records, newest first.
func (r *NotificationRepo) ListRecent(ctx context.Context, limit int) ([]model.NotificationRecord, error) {
	const query = `
		SELECT id, section_idx, label, content, delivered, error, sent_at
		FROM notifications
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`
	return r.list(ctx, query, limit)
}

// ListByIndex returns up to limit records for index, newest first.
func (r *NotificationRepo) ListByIndex(ctx context.Context, index string, limit int) ([]model.NotificationRecord, error) {
	const query = `
		SELECT id, section_idx, label, content, delivered, error, sent_at
		FROM notifications
		WHERE section_idx = ?
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`
	return r.list(ctx, query, index, limit)
}

func (r *NotificationRepo) list(ctx context.Context, query string, args ...any) ([]model.NotificationRecord, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	records := []model.NotificationRecord{}
	for rows.Next() {
		rec, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return records, nil
}

func scanNotification(s scanner) (*model.NotificationRecord, error) {
	var rec model.NotificationRecord
	var delivered int
	var sentAt sql.NullString

	if err := s.Scan(&rec.ID, &rec.Index, &rec.Label, &rec.Content, &delivered, &rec.Error, &sentAt); err != nil {
		return nil, err
	}

	rec.Delivered = delivered != 0

	if sentAt.Valid {
		t, err := parseTime(sentAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse sent_at: %w", err)
		}
		rec.SentAt = t
	}

	return &rec, nil
}

// parseTime attempts to parse a time string using common SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
