package application

import (
	"time"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

// suppressionEntry is the per-index state: a label and a tick countdown.
type suppressionEntry struct {
	index     string
	label     string
	remaining uint32
	lastFired time.Time
}

// SuppressionTable tracks, for each watched index, how many ticks remain
// before it may be announced again. The key set is fixed at construction.
//
// SuppressionTable is not safe for concurrent use; it is owned by the poll loop.
type SuppressionTable struct {
	cooldown uint32
	slots    map[string]int
	entries  []suppressionEntry
	seen     []bool // Scratch space reused across ticks.
}

// NewSuppressionTable creates a table keyed by watch, in order. Labels
// missing from labels default to UnknownLabel. Repeated indexes in watch
// collapse to a single entry.
func NewSuppressionTable(watch []string, labels map[string]string, cooldown uint32) *SuppressionTable {
	t := &SuppressionTable{
		cooldown: cooldown,
		slots:    make(map[string]int, len(watch)),
		entries:  make([]suppressionEntry, 0, len(watch)),
	}

	for _, index := range watch {
		if _, dup := t.slots[index]; dup {
			continue
		}
		label := labels[index]
		if label == "" {
			label = UnknownLabel(index)
		}
		t.slots[index] = len(t.entries)
		t.entries = append(t.entries, suppressionEntry{index: index, label: label})
	}
	t.seen = make([]bool, len(t.entries))

	return t
}

// Apply advances the table by one tick given the indexes currently open
// and returns the alerts to fire, in open-set order.
//
// A watched index that is open fires when its countdown is zero, which
// re-arms the countdown to the configured cooldown; otherwise the countdown
// drops by one. Every watched index that is not open has its countdown
// forced to zero so a later reopening fires immediately. Unwatched indexes
// are ignored and an index listed twice in open counts once.
func (t *SuppressionTable) Apply(open []string, now time.Time) []model.Alert {
	clear(t.seen)

	var alerts []model.Alert
	for _, index := range open {
		slot, ok := t.slots[index]
		if !ok || t.seen[slot] {
			continue
		}
		t.seen[slot] = true

		e := &t.entries[slot]
		if e.remaining == 0 {
			alerts = append(alerts, model.Alert{Index: e.index, Label: e.label})
			e.remaining = t.cooldown
			e.lastFired = now
		} else {
			e.remaining--
		}
	}

	for slot, seen := range t.seen {
		if !seen {
			t.entries[slot].remaining = 0
		}
	}

	return alerts
}

// Remaining returns the countdown for index and whether index is watched.
func (t *SuppressionTable) Remaining(index string) (uint32, bool) {
	slot, ok := t.slots[index]
	if !ok {
		return 0, false
	}
	return t.entries[slot].remaining, true
}

// Label returns the display label for index and whether index is watched.
func (t *SuppressionTable) Label(index string) (string, bool) {
	slot, ok := t.slots[index]
	if !ok {
		return "", false
	}
	return t.entries[slot].label, true
}

// Len returns the number of watched indexes.
func (t *SuppressionTable) Len() int {
	return len(t.entries)
}

// Cooldown returns the configured cooldown length in ticks.
func (t *SuppressionTable) Cooldown() uint32 {
	return t.cooldown
}

// Snapshot returns a copy of every entry in watch-list order.
func (t *SuppressionTable) Snapshot() []model.WatchStatus {
	out := make([]model.WatchStatus, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, model.WatchStatus{
			Index:             e.index,
			Label:             e.label,
			CooldownRemaining: e.remaining,
			LastFiredAt:       e.lastFired,
		})
	}
	return out
}
