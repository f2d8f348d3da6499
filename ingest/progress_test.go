package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractionProgressStaysInBand(t *testing.T) {
	assert.Equal(t, progressSetupDone, extractionProgress(0, 4))
	assert.Equal(t, progressExtractionDone, extractionProgress(4, 4))
	assert.Equal(t, progressExtractionDone, extractionProgress(0, 0), "no chunks means the band is done")

	prev := 0
	for i := 0; i <= 7; i++ {
		p := extractionProgress(i, 7)
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
}

func TestCategoryProgressStaysInBand(t *testing.T) {
	assert.Equal(t, progressPersistReady, categoryProgress(0, 3))
	assert.Equal(t, progressCategoriesDone, categoryProgress(3, 3))
	assert.Equal(t, progressCategoriesDone, categoryProgress(0, 0))
}
