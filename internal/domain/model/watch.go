package model

import "time"

// WatchStatus is a read-only view of one suppression table entry.
type WatchStatus struct {
	Index             string
	Label             string
	CooldownRemaining uint32
	LastFiredAt       time.Time // Zero if the index has not fired since startup.
}

// PollStats summarizes the poll loop since startup.
type PollStats struct {
	Ticks          int64
	FailedTicks    int64
	AlertsFired    int64
	LastPollAt     time.Time
	LastPollFailed bool
}

// WatchSnapshot is a consistent copy of the suppression table and loop
// counters taken between ticks.
type WatchSnapshot struct {
	Watches []WatchStatus
	Stats   PollStats
	TakenAt time.Time
}
