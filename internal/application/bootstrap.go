package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driven"
)

// LoadLabels fetches course metadata once and resolves a label for every
// watched index. A fetch failure is returned to the caller, which should
// treat it as fatal: every later notification depends on these labels.
func LoadLabels(
	ctx context.Context,
	source driven.CourseSource,
	q model.Query,
	watch []string,
	logger *slog.Logger,
) (map[string]string, error) {
	start := time.Now()

	courses, err := source.FetchCourses(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load course metadata: %w", err)
	}

	var sections int
	for _, c := range courses {
		sections += len(c.Sections)
	}
	logger.Info("course metadata loaded",
		"courses", len(courses),
		"sections", sections,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	labels := ResolveLabels(watch, courses, logger)
	logger.Debug("section labels resolved", "labels", labels)

	return labels, nil
}
