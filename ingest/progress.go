package ingest

// Progress phase boundaries. The exact cut points are not a contract with
// callers; only monotonicity and 100-at-success are.
const (
	progressSetupDone      = 10
	progressExtractionDone = 65
	progressPersistReady   = 78
	progressCategoriesDone = 95
	progressComplete       = 100
)

// extractionProgress maps completed chunks onto the extraction band.
func extractionProgress(done, total int) int {
	if total <= 0 {
		return progressExtractionDone
	}
	span := progressExtractionDone - progressSetupDone
	return progressSetupDone + span*done/total
}

// categoryProgress maps persisted categories onto the persistence band.
func categoryProgress(done, total int) int {
	if total <= 0 {
		return progressCategoriesDone
	}
	span := progressCategoriesDone - progressPersistReady
	return progressPersistReady + span*done/total
}
