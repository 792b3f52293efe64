package driven

import (
	"context"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

// CourseSource defines the driven port for the one-shot course metadata
// fetch used to build display labels.
type CourseSource interface {
	FetchCourses(ctx context.Context, q model.Query) ([]model.Course, error)
}

// OpenSectionSource defines the driven port for the per-tick snapshot of
// currently open section indexes.
type OpenSectionSource interface {
	FetchOpenSections(ctx context.Context, q model.Query) ([]string, error)
}
