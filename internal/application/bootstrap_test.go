package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/snipecord/internal/application"
	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

func TestLoadLabels_Success(t *testing.T) {
	source := &mockCourseSource{courses: []model.Course{
		{Title: "GENERAL CHEMISTRY", Sections: []model.Section{{Number: "10", Index: "04321"}}},
	}}

	labels, err := application.LoadLabels(context.Background(), source, fallQuery, []string{"04321", "55555"}, discardLogger())

	require.NoError(t, err)
	assert.Equal(t, "GENERAL CHEMISTRY Section 10 (Index 04321)", labels["04321"])
	assert.Equal(t, "Unknown Class (Index 55555)", labels["55555"])
}

func TestLoadLabels_FetchErrorIsReturned(t *testing.T) {
	source := &mockCourseSource{err: errBoom}

	labels, err := application.LoadLabels(context.Background(), source, fallQuery, []string{"1"}, discardLogger())

	assert.Nil(t, labels)
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "load course metadata")
}
