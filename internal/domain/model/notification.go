package model

import "time"

// Message is a single outbound chat message. Username and AvatarURL are
// honored only by channels that support per-message sender identity.
type Message struct {
	Username  string
	AvatarURL string
	Content   string
}

// Alert is emitted by the suppression table for every watched index that
// fires during a tick.
type Alert struct {
	Index string
	Label string
}

// NotificationRecord is one entry in the notification history.
type NotificationRecord struct {
	ID        int64
	Index     string
	Label     string
	Content   string
	Delivered bool
	Error     string // Empty when every channel accepted the message.
	SentAt    time.Time
}
