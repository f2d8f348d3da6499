package vitae

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitaeworks/vitae/core"
)

func TestServiceWiring(t *testing.T) {
	service, err := Open("", WithInMemory())
	require.NoError(t, err)
	defer service.Close()

	pipeline, err := service.NewPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	reconciler, err := service.NewReconciler()
	require.NoError(t, err)
	assert.NotNil(t, reconciler)

	enricher, err := service.NewEnricher()
	require.NoError(t, err)
	assert.NotNil(t, enricher)

	// Repositories are live
	categories, err := service.Stores().Categories.AddCategories(context.Background(),
		&core.Category{OwnerId: 1, Name: "Publications"})
	require.NoError(t, err)
	assert.NotZero(t, categories[0].Id)
}
