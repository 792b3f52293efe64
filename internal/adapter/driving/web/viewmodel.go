package web

import (
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/snipecord/internal/application"
	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// statusMarkdown renders the watch snapshot and recent history as a
// Markdown document. history is nil when the history store is disabled.
func statusMarkdown(snap model.WatchSnapshot, history []model.NotificationRecord, q model.Query, interval time.Duration) string {
	var b strings.Builder

	b.WriteString("# SnipeCord\n\n")
	fmt.Fprintf(&b, "Watching **%d** sections for semester `%s` (%s, %s). Polling every %s.\n\n",
		len(snap.Watches), q.Semester(), escapeMarkdown(q.Campus), escapeMarkdown(q.Level), interval)

	b.WriteString("| Polls | Failed | Alerts fired | Last poll |\n")
	b.WriteString("|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %s |\n\n",
		snap.Stats.Ticks, snap.Stats.FailedTicks, snap.Stats.AlertsFired, lastPoll(snap.Stats))

	b.WriteString("## Watches\n\n")
	b.WriteString("| Index | Class | Cooldown | Last fired |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, ws := range snap.Watches {
		fmt.Fprintf(&b, "| [%s](%s) | %s | %s | %s |\n",
			escapeMarkdown(ws.Index),
			application.RegistrationURL(q, ws.Index),
			escapeMarkdown(ws.Label),
			cooldown(ws.CooldownRemaining),
			formatTime(ws.LastFiredAt, "never"),
		)
	}
	b.WriteString("\n")

	b.WriteString("## Recent notifications\n\n")
	switch {
	case history == nil:
		b.WriteString("_History is disabled._\n")
	case len(history) == 0:
		b.WriteString("_No notifications recorded yet._\n")
	default:
		b.WriteString("| Sent | Class | Delivered | Error |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, rec := range history {
			delivered := "yes"
			if !rec.Delivered {
				delivered = "**no**"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				formatTime(rec.SentAt, ""),
				escapeMarkdown(rec.Label),
				delivered,
				escapeMarkdown(rec.Error),
			)
		}
	}

	return b.String()
}

func lastPoll(s model.PollStats) string {
	if s.LastPollAt.IsZero() {
		return "pending"
	}
	result := "ok"
	if s.LastPollFailed {
		result = "**failed**"
	}
	return formatTime(s.LastPollAt, "") + " (" + result + ")"
}

func cooldown(remaining uint32) string {
	if remaining == 0 {
		return "ready"
	}
	return fmt.Sprintf("%d ticks", remaining)
}

func formatTime(t time.Time, zero string) string {
	if t.IsZero() {
		return zero
	}
	return t.UTC().Format(timeLayout)
}
