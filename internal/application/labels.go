package application

import (
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

// SectionLabel formats the display label for a section found in course metadata.
func SectionLabel(title, number, index string) string {
	return fmt.Sprintf("%s Section %s (Index %s)", title, number, index)
}

// UnknownLabel is the fallback label for a watched index missing from metadata.
func UnknownLabel(index string) string {
	return fmt.Sprintf("Unknown Class (Index %s)", index)
}

// ResolveLabels maps every watched index to a display label using the
// one-shot course metadata. When an index appears in more than one section
// the last match in iteration order wins and the collision is logged.
// Watched indexes absent from the metadata get UnknownLabel and are still
// returned, so the caller keeps tracking them.
func ResolveLabels(watch []string, courses []model.Course, logger *slog.Logger) map[string]string {
	labels := make(map[string]string, len(watch))
	for _, index := range watch {
		labels[index] = ""
	}

	for _, course := range courses {
		for _, section := range course.Sections {
			prev, watched := labels[section.Index]
			if !watched {
				continue
			}
			label := SectionLabel(course.Title, section.Number, section.Index)
			if prev != "" {
				logger.Warn("same index found twice in course data, using last one",
					"index", section.Index,
					"first", prev,
					"then", label,
				)
			}
			labels[section.Index] = label
		}
	}

	for _, index := range watch {
		if labels[index] != "" {
			continue
		}
		logger.Warn("class data not found for index, tracking it anyway",
			"index", index,
		)
		labels[index] = UnknownLabel(index)
	}

	return labels
}
